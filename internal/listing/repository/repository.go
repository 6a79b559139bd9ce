package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AlibekovAA/estate-hub/internal/common/db"
	commonerrors "github.com/AlibekovAA/estate-hub/internal/common/errors"
	"github.com/AlibekovAA/estate-hub/internal/listing/domain"
)

type Repository interface {
	List(ctx context.Context, filter domain.Filter) ([]domain.Listing, error)
	FindByID(ctx context.Context, id domain.ID) (domain.Listing, error)
	GetView(ctx context.Context, id domain.ID) (domain.View, error)
	Create(ctx context.Context, listing domain.Listing, detail *domain.Detail) error
	Update(ctx context.Context, id domain.ID, patch domain.Patch) (domain.Listing, error)
	Delete(ctx context.Context, id domain.ID) error
	IsSaved(ctx context.Context, userID string, id domain.ID) (bool, error)
	ToggleSaved(ctx context.Context, userID string, id domain.ID) (bool, error)
	ListSaved(ctx context.Context, userID string) ([]domain.Listing, error)
}

type PgRepository struct {
	q  db.Querier
	tx db.TxManager
}

func NewPgRepository(q db.Querier, tx db.TxManager) *PgRepository {
	return &PgRepository{q: q, tx: tx}
}

const listingColumns = `l.id, l.title, l.price, l.images, l.address, l.city, l.bedroom, l.bathroom,
	l.latitude, l.longitude, l.type, l.property, l.owner_id, l.created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func listingDest(l *domain.Listing) []interface{} {
	return []interface{}{
		&l.ID, &l.Title, &l.Price, &l.Images, &l.Address, &l.City, &l.Bedroom, &l.Bathroom,
		&l.Latitude, &l.Longitude, &l.Type, &l.Property, &l.OwnerID, &l.CreatedAt,
	}
}

func scanListing(row rowScanner) (domain.Listing, error) {
	var l domain.Listing
	err := row.Scan(listingDest(&l)...)
	return l, err
}

// buildListQuery renders the search; unset filters contribute no predicate.
func buildListQuery(filter domain.Filter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.City != nil {
		add("l.city = $%d", *filter.City)
	}
	if filter.Type != nil {
		add("l.type = $%d", string(*filter.Type))
	}
	if filter.Property != nil {
		add("l.property = $%d", string(*filter.Property))
	}
	if filter.Bedroom != nil {
		add("l.bedroom = $%d", *filter.Bedroom)
	}
	add("l.price >= $%d", filter.MinPrice)
	add("l.price <= $%d", filter.MaxPrice)

	query := `SELECT ` + listingColumns + ` FROM listings l WHERE ` +
		strings.Join(conds, " AND ") + ` ORDER BY l.created_at DESC`
	return query, args
}

func (r *PgRepository) List(ctx context.Context, filter domain.Filter) ([]domain.Listing, error) {
	start := time.Now()
	query, args := buildListQuery(filter)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, db.HandleExecError(err, "list listings", start)
	}
	defer rows.Close()

	listings := make([]domain.Listing, 0)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, db.HandleExecError(err, "scan listing", start)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, db.HandleExecError(err, "list listings", start)
	}

	db.MeasureQueryDuration("list listings", start)
	return listings, nil
}

func (r *PgRepository) FindByID(ctx context.Context, id domain.ID) (domain.Listing, error) {
	start := time.Now()
	row := r.q.QueryRow(ctx, `SELECT `+listingColumns+` FROM listings l WHERE l.id = $1`, string(id))

	l, err := scanListing(row)
	if err != nil {
		return domain.Listing{}, db.HandleQueryError(err, commonerrors.ErrListingNotFound, "find listing", start)
	}
	db.MeasureQueryDuration("find listing", start)
	return l, nil
}

func (r *PgRepository) GetView(ctx context.Context, id domain.ID) (domain.View, error) {
	start := time.Now()
	row := r.q.QueryRow(ctx, `
		SELECT `+listingColumns+`,
			u.username, u.avatar,
			d.listing_id IS NOT NULL, COALESCE(d.description, ''), d.utilities, d.pet, d.income,
			d.size, d.school, d.bus, d.restaurant
		FROM listings l
		JOIN users u ON u.id = l.owner_id
		LEFT JOIN listing_details d ON d.listing_id = l.id
		WHERE l.id = $1`, string(id))

	var (
		view      domain.View
		detail    domain.Detail
		hasDetail bool
	)
	dest := append(listingDest(&view.Listing),
		&view.Owner.Username, &view.Owner.Avatar,
		&hasDetail, &detail.Description, &detail.Utilities, &detail.Pet, &detail.Income,
		&detail.Size, &detail.School, &detail.Bus, &detail.Restaurant,
	)
	if err := row.Scan(dest...); err != nil {
		return domain.View{}, db.HandleQueryError(err, commonerrors.ErrListingNotFound, "get listing view", start)
	}
	if hasDetail {
		view.Detail = &detail
	}

	db.MeasureQueryDuration("get listing view", start)
	return view, nil
}

func (r *PgRepository) Create(ctx context.Context, listing domain.Listing, detail *domain.Detail) error {
	return r.tx.WithTx(ctx, func(ctx context.Context, q db.Querier) error {
		start := time.Now()
		images := listing.Images
		if images == nil {
			images = []string{}
		}
		_, err := q.Exec(ctx, `
			INSERT INTO listings (id, title, price, images, address, city, bedroom, bathroom,
				latitude, longitude, type, property, owner_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			string(listing.ID), listing.Title, listing.Price, images, listing.Address, listing.City,
			listing.Bedroom, listing.Bathroom, listing.Latitude, listing.Longitude,
			string(listing.Type), string(listing.Property), listing.OwnerID, listing.CreatedAt,
		)
		if err != nil && db.IsForeignKeyViolation(err) {
			return commonerrors.ErrUserNotFound.WithCause(err)
		}
		if err := db.HandleExecError(err, "create listing", start); err != nil {
			return err
		}

		if detail == nil {
			return nil
		}

		start = time.Now()
		_, err = q.Exec(ctx, `
			INSERT INTO listing_details (listing_id, description, utilities, pet, income, size, school, bus, restaurant)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			string(listing.ID), detail.Description, detail.Utilities, detail.Pet, detail.Income,
			detail.Size, detail.School, detail.Bus, detail.Restaurant,
		)
		return db.HandleExecError(err, "create listing detail", start)
	})
}

func buildUpdateQuery(id domain.ID, patch domain.Patch) (string, []interface{}) {
	var (
		sets []string
		args []interface{}
	)
	set := func(column string, arg interface{}) {
		args = append(args, arg)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Price != nil {
		set("price", *patch.Price)
	}
	if patch.Images != nil {
		set("images", *patch.Images)
	}
	if patch.Address != nil {
		set("address", *patch.Address)
	}
	if patch.City != nil {
		set("city", *patch.City)
	}
	if patch.Bedroom != nil {
		set("bedroom", *patch.Bedroom)
	}
	if patch.Bathroom != nil {
		set("bathroom", *patch.Bathroom)
	}
	if patch.Latitude != nil {
		set("latitude", *patch.Latitude)
	}
	if patch.Longitude != nil {
		set("longitude", *patch.Longitude)
	}
	if patch.Type != nil {
		set("type", string(*patch.Type))
	}
	if patch.Property != nil {
		set("property", string(*patch.Property))
	}

	args = append(args, string(id))
	query := fmt.Sprintf(`UPDATE listings l SET %s WHERE l.id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), listingColumns)
	return query, args
}

func (r *PgRepository) Update(ctx context.Context, id domain.ID, patch domain.Patch) (domain.Listing, error) {
	if patch.Empty() {
		return r.FindByID(ctx, id)
	}

	start := time.Now()
	query, args := buildUpdateQuery(id, patch)
	l, err := scanListing(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		return domain.Listing{}, db.HandleQueryError(err, commonerrors.ErrListingNotFound, "update listing", start)
	}
	db.MeasureQueryDuration("update listing", start)
	return l, nil
}

func (r *PgRepository) Delete(ctx context.Context, id domain.ID) error {
	start := time.Now()
	tag, err := r.q.Exec(ctx, `DELETE FROM listings WHERE id = $1`, string(id))
	if err := db.HandleExecError(err, "delete listing", start); err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return commonerrors.ErrListingNotFound
	}
	return nil
}

func (r *PgRepository) IsSaved(ctx context.Context, userID string, id domain.ID) (bool, error) {
	start := time.Now()
	var saved bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM saved_listings WHERE user_id = $1 AND listing_id = $2)`,
		userID, string(id),
	).Scan(&saved)
	if err := db.HandleExecError(err, "check saved listing", start); err != nil {
		return false, err
	}
	return saved, nil
}

// ToggleSaved removes an existing save or creates one; it reports the resulting state.
func (r *PgRepository) ToggleSaved(ctx context.Context, userID string, id domain.ID) (bool, error) {
	saved := false
	err := r.tx.WithTx(ctx, func(ctx context.Context, q db.Querier) error {
		saved = false
		start := time.Now()
		tag, err := q.Exec(ctx,
			`DELETE FROM saved_listings WHERE user_id = $1 AND listing_id = $2`,
			userID, string(id),
		)
		if err := db.HandleExecError(err, "unsave saved listing", start); err != nil {
			return err
		}
		if tag.RowsAffected() > 0 {
			return nil
		}

		start = time.Now()
		_, err = q.Exec(ctx,
			`INSERT INTO saved_listings (user_id, listing_id) VALUES ($1, $2)`,
			userID, string(id),
		)
		if err != nil && db.IsForeignKeyViolation(err) {
			db.MeasureQueryDuration("save saved listing", start)
			return commonerrors.ErrListingNotFound.WithCause(err)
		}
		if err := db.HandleExecError(err, "save saved listing", start); err != nil {
			return err
		}
		saved = true
		return nil
	})
	return saved, err
}

func (r *PgRepository) ListSaved(ctx context.Context, userID string) ([]domain.Listing, error) {
	start := time.Now()
	rows, err := r.q.Query(ctx, `
		SELECT `+listingColumns+`
		FROM saved_listings s
		JOIN listings l ON l.id = s.listing_id
		WHERE s.user_id = $1
		ORDER BY s.created_at DESC`, userID)
	if err != nil {
		return nil, db.HandleExecError(err, "list saved listings", start)
	}
	defer rows.Close()

	listings := make([]domain.Listing, 0)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, db.HandleExecError(err, "scan saved listing", start)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, db.HandleExecError(err, "list saved listings", start)
	}

	db.MeasureQueryDuration("list saved listings", start)
	return listings, nil
}
