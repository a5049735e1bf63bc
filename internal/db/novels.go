package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/theLastOfCats/novel-library-server/internal/model"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

const selectNovel = `SELECT n.id, n.name, n.link, n.genre, n.original_name,
	d.id, d.description, d.mc_name, d.tags, d.special_characteristic_of_mc, d.status, d.total_chapters, d.added_on, d.last_updated_on,
	o.id, o.rating, o.chapters_read, o.favorite, o.worth_to_continue, o.chapters_frequency
	FROM novel n
	LEFT JOIN noveldetails d ON d.id = n.id
	LEFT JOIN novelopinion o ON o.id = n.id`

var detailsColumns = []string{
	"description", "mc_name", "tags", "special_characteristic_of_mc", "status", "total_chapters", "last_updated_on",
}

var opinionColumns = []string{
	"rating", "chapters_read", "favorite", "worth_to_continue", "chapters_frequency",
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

func (db *DB) ExistsByName(ctx context.Context, name string) (bool, error) {
	return db.exists(ctx, db.DB, "name = ?", name)
}

func (db *DB) ExistsByLink(ctx context.Context, link string) (bool, error) {
	return db.exists(ctx, db.DB, "link = ?", link)
}

func (db *DB) ExistsByNameOrLink(ctx context.Context, name, link string) (bool, error) {
	return db.exists(ctx, db.DB, "name = ? OR link = ?", name, link)
}

// ExistsByNameExcept reports whether a novel other than id already uses name.
func (db *DB) ExistsByNameExcept(ctx context.Context, name string, id int64) (bool, error) {
	return db.exists(ctx, db.DB, "name = ? AND id <> ?", name, id)
}

// ExistsByLinkExcept reports whether a novel other than id already uses link.
func (db *DB) ExistsByLinkExcept(ctx context.Context, link string, id int64) (bool, error) {
	return db.exists(ctx, db.DB, "link = ? AND id <> ?", link, id)
}

func (db *DB) exists(ctx context.Context, q querier, where string, args ...any) (bool, error) {
	var exists bool
	query := db.dialect.rebind("SELECT EXISTS(SELECT 1 FROM novel WHERE " + where + ")")
	if err := q.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists query: %w", err)
	}
	return exists, nil
}

// FindByNameContaining matches name as a case-insensitive substring. Both sides are folded by the
// same function so non-ASCII letters compare the way ASCII ones do.
func (db *DB) FindByNameContaining(ctx context.Context, name string) ([]model.Novel, error) {
	pattern := "%" + escapeLike(name) + "%"
	where := fmt.Sprintf(" WHERE %s LIKE %s ESCAPE '!' ORDER BY n.name", db.dialect.fold("n.name"), db.dialect.fold("?"))
	return db.queryNovels(ctx, selectNovel+where, pattern)
}

// FindByGenre matches genre exactly, ignoring case.
func (db *DB) FindByGenre(ctx context.Context, genre string) ([]model.Novel, error) {
	where := fmt.Sprintf(" WHERE %s = %s ORDER BY n.name", db.dialect.fold("n.genre"), db.dialect.fold("?"))
	return db.queryNovels(ctx, selectNovel+where, genre)
}

func (db *DB) FindAll(ctx context.Context) ([]model.Novel, error) {
	return db.queryNovels(ctx, selectNovel+" ORDER BY n.id")
}

func (db *DB) FindByID(ctx context.Context, id int64) (*model.Novel, error) {
	return db.findByID(ctx, db.DB, id)
}

func (db *DB) findByID(ctx context.Context, q querier, id int64) (*model.Novel, error) {
	row := q.QueryRowContext(ctx, db.dialect.rebind(selectNovel+" WHERE n.id = ?"), id)
	n, err := scanNovel(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.Errorf(model.ErrNotFound, "No Novel exists in the system with id %d", id)
		}
		return nil, fmt.Errorf("scan novel %d: %w", id, err)
	}
	return n, nil
}

func (db *DB) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM novel").Scan(&count); err != nil {
		return 0, fmt.Errorf("count novels: %w", err)
	}
	return count, nil
}

// InsertNovel stores the novel and its owned records atomically. The name/link check runs in the
// same transaction and the unique constraints catch anything that slips past it.
func (db *DB) InsertNovel(ctx context.Context, n *model.Novel) (int64, error) {
	err := db.WithTx(ctx, func(tx *sql.Tx) error {
		exists, err := db.exists(ctx, tx, "name = ? OR link = ?", n.Name, n.Link)
		if err != nil {
			return err
		}
		if exists {
			return duplicateNovel(n)
		}
		return db.insertNovel(ctx, tx, n)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return 0, duplicateNovel(n)
		}
		return 0, err
	}
	return n.ID, nil
}

// InsertNovels stores every novel whose name and link are still free, skipping the rest.
// It returns how many were inserted.
func (db *DB) InsertNovels(ctx context.Context, novels []model.Novel) (int, error) {
	inserted := 0
	err := db.WithTx(ctx, func(tx *sql.Tx) error {
		inserted = 0
		for i := range novels {
			n := &novels[i]
			byName, err := db.exists(ctx, tx, "name = ?", n.Name)
			if err != nil {
				return err
			}
			byLink, err := db.exists(ctx, tx, "link = ?", n.Link)
			if err != nil {
				return err
			}
			if byName || byLink {
				log.WithFields(log.Fields{"name": n.Name, "link": n.Link}).Info("novel already exists in the library, skipping")
				continue
			}
			if err := db.insertNovel(ctx, tx, n); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func (db *DB) insertNovel(ctx context.Context, tx *sql.Tx, n *model.Novel) error {
	query := `INSERT INTO novel (name, link, genre, original_name) VALUES (?, ?, ?, ?)`
	args := []any{n.Name, n.Link, n.Genre, n.OriginalName}

	if db.dialect == dialectPostgres {
		if err := tx.QueryRowContext(ctx, db.dialect.rebind(query+" RETURNING id"), args...).Scan(&n.ID); err != nil {
			return fmt.Errorf("insert novel: %w", err)
		}
	} else {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("insert novel: %w", err)
		}
		if n.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
	}
	n.Attach()

	if n.Details != nil {
		if err := db.saveDetails(ctx, tx, n.ID, n.Details); err != nil {
			return err
		}
	}
	if n.Opinion != nil {
		if err := db.saveOpinion(ctx, tx, n.ID, n.Opinion); err != nil {
			return err
		}
	}
	return nil
}

// UpdateNovel writes the novel's own columns. Owned records are left untouched.
func (db *DB) UpdateNovel(ctx context.Context, n *model.Novel) error {
	res, err := db.ExecContext(ctx, db.dialect.rebind(`UPDATE novel SET name = ?, link = ?, genre = ?, original_name = ? WHERE id = ?`),
		n.Name, n.Link, n.Genre, n.OriginalName, n.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return duplicateNovel(n)
		}
		return fmt.Errorf("update novel %d: %w", n.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return model.Errorf(model.ErrNotFound, "No Novel exists in the system with id %d", n.ID)
	}
	return nil
}

// SaveDetails inserts or replaces the details row of novel id.
func (db *DB) SaveDetails(ctx context.Context, id int64, d *model.NovelDetails) error {
	return db.saveDetails(ctx, db.DB, id, d)
}

func (db *DB) saveDetails(ctx context.Context, q querier, id int64, d *model.NovelDetails) error {
	now := nowMillis()
	d.ID = id
	if strings.TrimSpace(d.Status) == "" {
		d.Status = model.DefaultStatus
	}
	if d.AddedOn == 0 {
		d.AddedOn = now
	}
	d.LastUpdatedOn = now

	query := `INSERT INTO noveldetails (id, description, mc_name, tags, special_characteristic_of_mc, status, total_chapters, added_on, last_updated_on)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)` + db.dialect.upsert("id", detailsColumns)
	_, err := q.ExecContext(ctx, db.dialect.rebind(query),
		d.ID, d.Description, d.McName, d.Tags, d.SpecialCharacteristicOfMc, d.Status, d.TotalChapters, d.AddedOn, d.LastUpdatedOn)
	if err != nil {
		return fmt.Errorf("save details for novel %d: %w", id, err)
	}
	return nil
}

// SaveOpinion inserts or replaces the opinion row of novel id.
func (db *DB) SaveOpinion(ctx context.Context, id int64, o *model.NovelOpinion) error {
	return db.saveOpinion(ctx, db.DB, id, o)
}

func (db *DB) saveOpinion(ctx context.Context, q querier, id int64, o *model.NovelOpinion) error {
	o.ID = id
	query := `INSERT INTO novelopinion (id, rating, chapters_read, favorite, worth_to_continue, chapters_frequency)
	VALUES (?, ?, ?, ?, ?, ?)` + db.dialect.upsert("id", opinionColumns)
	_, err := q.ExecContext(ctx, db.dialect.rebind(query),
		o.ID, o.Rating, o.ChaptersRead, o.Favorite, o.WorthToContinue, o.ChaptersFrequency)
	if err != nil {
		return fmt.Errorf("save opinion for novel %d: %w", id, err)
	}
	return nil
}

// DeleteByID removes the novel and its owned records.
func (db *DB) DeleteByID(ctx context.Context, id int64) error {
	return db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"novelopinion", "noveldetails"} {
			if _, err := tx.ExecContext(ctx, db.dialect.rebind("DELETE FROM "+table+" WHERE id = ?"), id); err != nil {
				return fmt.Errorf("delete from %s: %w", table, err)
			}
		}
		res, err := tx.ExecContext(ctx, db.dialect.rebind("DELETE FROM novel WHERE id = ?"), id)
		if err != nil {
			return fmt.Errorf("delete novel %d: %w", id, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return model.Errorf(model.ErrNotFound, "No Novel exists in the system with id %d", id)
		}
		return nil
	})
}

func (db *DB) queryNovels(ctx context.Context, query string, args ...any) ([]model.Novel, error) {
	rows, err := db.QueryContext(ctx, db.dialect.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query novels: %w", err)
	}
	defer rows.Close()

	novels := make([]model.Novel, 0)
	for rows.Next() {
		n, err := scanNovel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan novel: %w", err)
		}
		novels = append(novels, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return novels, nil
}

func scanNovel(row rowScanner) (*model.Novel, error) {
	var (
		n            model.Novel
		originalName sql.NullString

		detailsID     sql.NullInt64
		description   sql.NullString
		mcName        sql.NullString
		tags          sql.NullString
		special       sql.NullString
		status        sql.NullString
		totalChapters sql.NullInt64
		addedOn       sql.NullInt64
		lastUpdatedOn sql.NullInt64

		opinionID    sql.NullInt64
		rating       sql.NullInt64
		chaptersRead sql.NullInt64
		favorite     sql.NullBool
		worth        sql.NullBool
		frequency    sql.NullString
	)

	if err := row.Scan(
		&n.ID, &n.Name, &n.Link, &n.Genre, &originalName,
		&detailsID, &description, &mcName, &tags, &special, &status, &totalChapters, &addedOn, &lastUpdatedOn,
		&opinionID, &rating, &chaptersRead, &favorite, &worth, &frequency,
	); err != nil {
		return nil, err
	}

	if originalName.Valid {
		n.OriginalName = &originalName.String
	}
	if detailsID.Valid {
		n.Details = &model.NovelDetails{
			ID:                        detailsID.Int64,
			Description:               description.String,
			McName:                    mcName.String,
			Tags:                      tags.String,
			SpecialCharacteristicOfMc: special.String,
			Status:                    status.String,
			TotalChapters:             int(totalChapters.Int64),
			AddedOn:                   addedOn.Int64,
			LastUpdatedOn:             lastUpdatedOn.Int64,
		}
	}
	if opinionID.Valid {
		n.Opinion = &model.NovelOpinion{
			ID:                opinionID.Int64,
			ChaptersRead:      int(chaptersRead.Int64),
			Favorite:          favorite.Bool,
			WorthToContinue:   worth.Bool,
			ChaptersFrequency: frequency.String,
		}
		if rating.Valid {
			r := int(rating.Int64)
			n.Opinion.Rating = &r
		}
	}
	return &n, nil
}

func duplicateNovel(n *model.Novel) error {
	return model.Errorf(model.ErrDuplicate, "Novel already exists with name: %s and link : %s", n.Name, n.Link)
}
