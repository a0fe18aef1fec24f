package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"satn_chatbot/internal/domain"
)

func marshalOrNil(v any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return valJSON(b)
}

func (r *Repo) UpsertListing(ctx context.Context, l domain.Listing) (int64, error) {
	var cats, gallery, attrs any
	if len(l.Categories) > 0 {
		cats = marshalOrNil(l.Categories)
	}
	if len(l.GalleryImageURLs) > 0 {
		gallery = marshalOrNil(l.GalleryImageURLs)
	}
	if len(l.Attributes) > 0 {
		attrs = marshalOrNil(l.Attributes)
	}
	res, err := r.db.ExecContext(ctx, upsertListingSQL,
		l.WPID, l.Slug, valStr(l.Status), l.Title, valStr(l.DescriptionHTML), valStr(l.DescriptionText),
		valStr(l.Permalink), valStr(l.Region), cats, valStr(l.FeaturedImageURL), gallery,
		valTime(l.WPCreated), valTime(l.WPModified), valStr(l.ListingType), valStr(l.Location),
		valF64(l.PriceFrom), valInt(l.Beds), valInt(l.Baths), valInt(l.CarSpaces), valInt(l.CompletedPercent),
		valStr(l.EstCompletion), valStr(l.Address), valStr(l.VideoURL), valStr(l.VirtualTourURL),
		valStr(l.LastModifiedNote), attrs, valStr(l.ImageURL),
	)
	if err != nil {
		return 0, mapErr(err)
	}
	return res.LastInsertId()
}

// ReplaceListingMedia swaps a listing's images and documents in one transaction.
func (r *Repo) ReplaceListingMedia(ctx context.Context, listingID int64, imgs []domain.ListingImage, docs []domain.ListingDocument) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, deleteListingImagesSQL, listingID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, deleteListingDocumentsSQL, listingID); err != nil {
		return err
	}

	if len(imgs) > 0 {
		values := make([]string, 0, len(imgs))
		args := make([]any, 0, len(imgs)*7)
		for _, im := range imgs {
			values = append(values, "(?,?,?,?,?,?,?)")
			args = append(args, listingID, im.RemoteURL, valStr(im.AltText), valInt(im.Width), valInt(im.Height), im.Position, im.IsFeatured)
		}
		if _, err := tx.ExecContext(ctx, insertListingImagesPrefix+strings.Join(values, ","), args...); err != nil {
			return err
		}
	}

	if len(docs) > 0 {
		values := make([]string, 0, len(docs))
		args := make([]any, 0, len(docs)*5)
		for _, d := range docs {
			values = append(values, "(?,?,?,?,?)")
			args = append(args, listingID, d.DocType, d.RemoteURL, valStr(d.Filename), valStr(d.MimeType))
		}
		if _, err := tx.ExecContext(ctx, insertListingDocumentsPrefix+strings.Join(values, ","), args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListListings returns the text columns the cleanup pass rewrites.
func (r *Repo) ListListings(ctx context.Context) ([]domain.Listing, error) {
	rows, err := r.db.QueryContext(ctx, listListingsTextSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Listing
	for rows.Next() {
		var l domain.Listing
		var status, html, text, region sql.NullString
		if err := rows.Scan(&l.ID, &l.WPID, &l.Slug, &status, &l.Title, &html, &text, &region); err != nil {
			return nil, err
		}
		l.Status, l.DescriptionHTML, l.DescriptionText, l.Region = nullStr(status), nullStr(html), nullStr(text), nullStr(region)
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *Repo) UpdateListingText(ctx context.Context, l domain.Listing) error {
	_, err := r.db.ExecContext(ctx, updateListingTextSQL,
		l.Slug, valStr(l.Status), l.Title, valStr(l.DescriptionHTML), valStr(l.DescriptionText), valStr(l.Region), l.ID)
	return mapErr(err)
}
