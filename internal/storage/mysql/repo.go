package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"

	"satn_chatbot/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
func valInt64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return *p
}
func valJSON(b []byte) any {
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	return string(b)
}

func nullStr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
func nullInt(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	n := int(ni.Int64)
	return &n
}
func nullInt64(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	n := ni.Int64
	return &n
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// mapErr turns driver errors the API cares about into domain errors.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var me *mysqldrv.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case 1062: // duplicate entry
			return fmt.Errorf("%w: %s", domain.ErrConflict, me.Message)
		case 1452: // foreign key
			return fmt.Errorf("%w: %s", domain.ErrInvalid, me.Message)
		}
	}
	return err
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// ---- agents ----

func scanAgent(s scanner) (domain.Agent, error) {
	var a domain.Agent
	var email, phone, region sql.NullString
	if err := s.Scan(&a.ID, &a.FullName, &email, &phone, &region, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return domain.Agent{}, mapErr(err)
	}
	a.Email, a.Phone, a.Region = nullStr(email), nullStr(phone), nullStr(region)
	return a, nil
}

func (r *Repo) ListAgents(ctx context.Context, skip, limit int) ([]domain.Agent, error) {
	rows, err := r.db.QueryContext(ctx, listAgentsSQL, limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Agent{}
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *Repo) GetAgent(ctx context.Context, id int64) (domain.Agent, error) {
	return scanAgent(r.db.QueryRowContext(ctx, getAgentSQL, id))
}

func (r *Repo) CreateAgent(ctx context.Context, a domain.Agent) (domain.Agent, error) {
	res, err := r.db.ExecContext(ctx, insertAgentSQL, a.FullName, valStr(a.Email), valStr(a.Phone), valStr(a.Region))
	if err != nil {
		return domain.Agent{}, mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Agent{}, err
	}
	return r.GetAgent(ctx, id)
}

func (r *Repo) UpdateAgent(ctx context.Context, a domain.Agent) (domain.Agent, error) {
	if _, err := r.db.ExecContext(ctx, updateAgentSQL, a.FullName, valStr(a.Email), valStr(a.Phone), valStr(a.Region), a.ID); err != nil {
		return domain.Agent{}, mapErr(err)
	}
	return r.GetAgent(ctx, a.ID)
}

// ---- company info ----

func scanCompany(s scanner) (domain.CompanyInfo, error) {
	var c domain.CompanyInfo
	var short, desc, web, email, phone, addr sql.NullString
	if err := s.Scan(&c.ID, &c.LegalName, &short, &desc, &web, &email, &phone, &addr, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return domain.CompanyInfo{}, mapErr(err)
	}
	c.ShortName, c.Description, c.WebsiteURL = nullStr(short), nullStr(desc), nullStr(web)
	c.Email, c.Phone, c.Address = nullStr(email), nullStr(phone), nullStr(addr)
	return c, nil
}

func (r *Repo) LatestCompany(ctx context.Context) (domain.CompanyInfo, error) {
	return scanCompany(r.db.QueryRowContext(ctx, latestCompanySQL))
}

func (r *Repo) GetCompany(ctx context.Context, id int64) (domain.CompanyInfo, error) {
	return scanCompany(r.db.QueryRowContext(ctx, getCompanySQL, id))
}

func (r *Repo) CreateCompany(ctx context.Context, c domain.CompanyInfo) (domain.CompanyInfo, error) {
	res, err := r.db.ExecContext(ctx, insertCompanySQL,
		c.LegalName, valStr(c.ShortName), valStr(c.Description), valStr(c.WebsiteURL),
		valStr(c.Email), valStr(c.Phone), valStr(c.Address))
	if err != nil {
		return domain.CompanyInfo{}, mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.CompanyInfo{}, err
	}
	return r.GetCompany(ctx, id)
}

func (r *Repo) UpdateCompany(ctx context.Context, c domain.CompanyInfo) (domain.CompanyInfo, error) {
	if _, err := r.db.ExecContext(ctx, updateCompanySQL,
		c.LegalName, valStr(c.ShortName), valStr(c.Description), valStr(c.WebsiteURL),
		valStr(c.Email), valStr(c.Phone), valStr(c.Address), c.ID); err != nil {
		return domain.CompanyInfo{}, mapErr(err)
	}
	return r.GetCompany(ctx, c.ID)
}

// ---- interactions ----

func scanInteraction(s scanner) (domain.Interaction, error) {
	var i domain.Interaction
	var lang, resp sql.NullString
	var userID, agentID sql.NullInt64
	if err := s.Scan(&i.ID, &i.SessionID, &i.Channel, &lang, &i.UserMessage, &resp, &userID, &agentID, &i.CreatedAt); err != nil {
		return domain.Interaction{}, mapErr(err)
	}
	i.Language, i.BotResponse = nullStr(lang), nullStr(resp)
	i.UserID, i.AgentID = nullInt64(userID), nullInt64(agentID)
	return i, nil
}

func (r *Repo) CreateInteraction(ctx context.Context, i domain.Interaction) (domain.Interaction, error) {
	res, err := r.db.ExecContext(ctx, insertInteractionSQL,
		i.SessionID, i.Channel, valStr(i.Language), i.UserMessage, valStr(i.BotResponse),
		valInt64(i.UserID), valInt64(i.AgentID))
	if err != nil {
		return domain.Interaction{}, mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Interaction{}, err
	}
	return scanInteraction(r.db.QueryRowContext(ctx, getInteractionSQL, id))
}

func (r *Repo) ListSessionInteractions(ctx context.Context, sessionID string, limit int) ([]domain.Interaction, error) {
	rows, err := r.db.QueryContext(ctx, listSessionInteractionsSQL, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Interaction{}
	for rows.Next() {
		i, err := scanInteraction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

// ---- leads ----

func (r *Repo) CreateLead(ctx context.Context, l domain.Lead) (domain.Lead, error) {
	if _, err := r.db.ExecContext(ctx, insertLeadSQL,
		l.ID, valStr(l.FirstName), valStr(l.LastName), l.Email, valStr(l.Phone), l.Source); err != nil {
		return domain.Lead{}, mapErr(err)
	}
	if err := r.db.QueryRowContext(ctx, getLeadCreatedSQL, l.ID).Scan(&l.CreatedAt); err != nil {
		return domain.Lead{}, mapErr(err)
	}
	return l, nil
}

// ---- users ----

func scanUser(s scanner) (domain.User, error) {
	var u domain.User
	var username, fullName, email, phone, hashed sql.NullString
	if err := s.Scan(&u.ID, &username, &fullName, &email, &phone, &hashed, &u.IsActive, &u.IsAdmin, &u.CreatedAt); err != nil {
		return domain.User{}, mapErr(err)
	}
	u.Username, u.FullName, u.Email = nullStr(username), nullStr(fullName), nullStr(email)
	u.Phone, u.HashedPassword = nullStr(phone), nullStr(hashed)
	return u, nil
}

func (r *Repo) GetUser(ctx context.Context, id int64) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, getUserSQL, id))
}

func (r *Repo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, getUserByEmailSQL, email))
}

func (r *Repo) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	res, err := r.db.ExecContext(ctx, insertUserSQL,
		valStr(u.Username), valStr(u.FullName), valStr(u.Email), valStr(u.Phone),
		valStr(u.HashedPassword), u.IsActive, u.IsAdmin)
	if err != nil {
		return domain.User{}, mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.User{}, err
	}
	return r.GetUser(ctx, id)
}

func (r *Repo) UpdateUserContact(ctx context.Context, id int64, fullName, phone *string) error {
	_, err := r.db.ExecContext(ctx, updateUserContactSQL, valStr(fullName), valStr(phone), id)
	return mapErr(err)
}

// ---- health ----

func (r *Repo) TableCounts(ctx context.Context) (map[string]int64, error) {
	out := make(map[string]int64, len(countedTables))
	for _, t := range countedTables {
		var n int64
		// table names come from a fixed list, never from input
		if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", t, err)
		}
		out[t] = n
	}
	return out, nil
}
