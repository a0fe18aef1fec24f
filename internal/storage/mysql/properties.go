package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"satn_chatbot/internal/domain"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func contains(s string) string { return "%" + likeEscaper.Replace(s) + "%" }

// buildPropertySearch renders the WHERE/ORDER/LIMIT tail for a filter.
// Rows without any price sort last.
func buildPropertySearch(f domain.PropertyFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if f.Q != "" {
		where = append(where, "(title LIKE ? OR location LIKE ?)")
		args = append(args, contains(f.Q), contains(f.Q))
	}
	if f.Location != "" {
		where = append(where, "location LIKE ?")
		args = append(args, contains(f.Location))
	}
	if f.Type != "" {
		where = append(where, propertyTypeExpr+" LIKE ?")
		args = append(args, contains(strings.ToLower(f.Type)))
	}
	if f.MinBeds != nil {
		where = append(where, propertyBedsExpr+" >= ?")
		args = append(args, *f.MinBeds)
	}
	if f.MinBaths != nil {
		where = append(where, propertyBathsExpr+" >= ?")
		args = append(args, *f.MinBaths)
	}
	if f.MinPrice != nil {
		where = append(where, propertyPriceExpr+" >= ?")
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil && *f.MaxPrice > 0 {
		where = append(where, propertyPriceExpr+" <= ?")
		args = append(args, *f.MaxPrice)
	}

	var b strings.Builder
	b.WriteString(selectPropertiesSQL)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY " + propertyPriceExpr + " IS NULL, " + propertyPriceExpr + " ASC, title ASC LIMIT ?")
	args = append(args, f.Limit)
	return b.String(), args
}

func scanProperty(s scanner) (domain.Property, error) {
	var p domain.Property
	var (
		desc, loc, est, video, tour, brochure, plan, priceList sql.NullString
		agentID, beds, baths, cars                             sql.NullInt64
		features                                               []byte
	)
	if err := s.Scan(
		&p.ID, &p.Title, &desc, &p.Price, &p.PriceFrom, &loc, &features, &agentID,
		&beds, &baths, &cars, &est, &video, &tour,
		&brochure, &plan, &priceList, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return domain.Property{}, mapErr(err)
	}
	p.Description, p.Location, p.EstCompletion = nullStr(desc), nullStr(loc), nullStr(est)
	p.VideoURL, p.VirtualTourURL = nullStr(video), nullStr(tour)
	p.BrochureURL, p.FloorPlanURL, p.PriceListURL = nullStr(brochure), nullStr(plan), nullStr(priceList)
	p.AgentID = nullInt64(agentID)
	p.Beds, p.Baths, p.CarSpaces = nullInt(beds), nullInt(baths), nullInt(cars)
	p.Features = domain.Features{}
	if len(features) > 0 {
		if err := json.Unmarshal(features, &p.Features); err != nil {
			log.Warn().Err(err).Str("property_id", p.ID).Msg("unreadable features column")
			p.Features = domain.Features{}
		}
	}
	return p, nil
}

func (r *Repo) SearchProperties(ctx context.Context, f domain.PropertyFilter) ([]domain.Property, error) {
	q, args := buildPropertySearch(f.Normalize())
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) GetProperty(ctx context.Context, id string) (domain.Property, error) {
	return scanProperty(r.db.QueryRowContext(ctx, getPropertySQL, id))
}

func (r *Repo) CreateProperty(ctx context.Context, p domain.Property) (domain.Property, error) {
	feats, err := json.Marshal(p.Features)
	if err != nil {
		return domain.Property{}, fmt.Errorf("marshal features: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, insertPropertySQL,
		p.ID, p.Title, valStr(p.Description), p.Price, p.PriceFrom, valStr(p.Location), valJSON(feats), valInt64(p.AgentID),
		valInt(p.Beds), valInt(p.Baths), valInt(p.CarSpaces), valStr(p.EstCompletion), valStr(p.VideoURL), valStr(p.VirtualTourURL),
		valStr(p.BrochureURL), valStr(p.FloorPlanURL), valStr(p.PriceListURL),
	); err != nil {
		return domain.Property{}, mapErr(err)
	}
	return r.GetProperty(ctx, p.ID)
}

func (r *Repo) UpdateProperty(ctx context.Context, p domain.Property) (domain.Property, error) {
	feats, err := json.Marshal(p.Features)
	if err != nil {
		return domain.Property{}, fmt.Errorf("marshal features: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, updatePropertySQL,
		p.Title, valStr(p.Description), p.Price, p.PriceFrom, valStr(p.Location), valJSON(feats), valInt64(p.AgentID),
		valInt(p.Beds), valInt(p.Baths), valInt(p.CarSpaces), valStr(p.EstCompletion), valStr(p.VideoURL), valStr(p.VirtualTourURL),
		valStr(p.BrochureURL), valStr(p.FloorPlanURL), valStr(p.PriceListURL), p.ID,
	); err != nil {
		return domain.Property{}, mapErr(err)
	}
	return r.GetProperty(ctx, p.ID)
}
