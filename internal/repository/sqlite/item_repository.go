package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cookify/internal/domain"
	"cookify/internal/repository"
)

const createItemTables = `
CREATE TABLE IF NOT EXISTS items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	user_name TEXT NOT NULL,
	user_image_url TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL,
	image_url TEXT NOT NULL DEFAULT '',
	servings INTEGER NOT NULL DEFAULT 0,
	cook_time INTEGER NOT NULL DEFAULT 0,
	instructions TEXT NOT NULL DEFAULT '',
	num_likes INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_items_user_id ON items(user_id);

CREATE TABLE IF NOT EXISTS item_categories (
	item_id INTEGER NOT NULL,
	category TEXT NOT NULL,
	PRIMARY KEY (item_id, category),
	FOREIGN KEY(item_id) REFERENCES items(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS item_ingredients (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	item_id INTEGER NOT NULL,
	ingredient_id TEXT NOT NULL,
	name TEXT NOT NULL,
	amount TEXT NOT NULL,
	FOREIGN KEY(item_id) REFERENCES items(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_item_ingredients_item_id ON item_ingredients(item_id);

CREATE TABLE IF NOT EXISTS item_comments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	item_id INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	user_name TEXT NOT NULL,
	user_image_url TEXT NOT NULL DEFAULT '',
	text TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	FOREIGN KEY(item_id) REFERENCES items(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_item_comments_item_id ON item_comments(item_id);

CREATE TABLE IF NOT EXISTS item_likes (
	item_id INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	PRIMARY KEY (item_id, user_id),
	FOREIGN KEY(item_id) REFERENCES items(id) ON DELETE CASCADE
);
`

type ItemRepository struct {
	db *sql.DB
}

func NewItemRepository(db *sql.DB) repository.ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createItemTables); err != nil {
		return fmt.Errorf("create item tables: %w", err)
	}
	return nil
}

func (r *ItemRepository) Create(ctx context.Context, item *domain.Item) (int64, error) {
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // safe no-op on commit

	res, err := tx.ExecContext(ctx, `
INSERT INTO items (user_id, user_name, user_image_url, title, image_url, servings, cook_time, instructions, num_likes, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		item.UserID,
		item.UserName,
		item.UserImageURL,
		item.Title,
		item.ImageURL,
		item.Servings,
		item.CookTime,
		item.Instructions,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("item last insert id: %w", err)
	}
	item.ID = id

	if err := insertCategories(ctx, tx, id, item.Categories); err != nil {
		return 0, err
	}
	if err := insertIngredients(ctx, tx, id, item.Ingredients); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return id, nil
}

func (r *ItemRepository) Update(ctx context.Context, item *domain.Item) error {
	item.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
UPDATE items
SET user_name = ?, user_image_url = ?, title = ?, image_url = ?, servings = ?, cook_time = ?, instructions = ?, updated_at = ?
WHERE id = ?`,
		item.UserName,
		item.UserImageURL,
		item.Title,
		item.ImageURL,
		item.Servings,
		item.CookTime,
		item.Instructions,
		item.UpdatedAt,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update item rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrItemNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM item_categories WHERE item_id = ?`, item.ID); err != nil {
		return fmt.Errorf("delete categories: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM item_ingredients WHERE item_id = ?`, item.ID); err != nil {
		return fmt.Errorf("delete ingredients: %w", err)
	}
	if err := insertCategories(ctx, tx, item.ID, item.Categories); err != nil {
		return err
	}
	if err := insertIngredients(ctx, tx, item.ID, item.Ingredients); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *ItemRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete item rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *ItemRepository) Get(ctx context.Context, id int64) (*domain.Item, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, user_name, user_image_url, title, image_url, servings, cook_time, instructions, num_likes, created_at, updated_at
FROM items
WHERE id = ?`,
		id,
	)

	item, err := scanItem(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (r *ItemRepository) List(ctx context.Context, filter repository.ItemFilter) ([]domain.Item, error) {
	query := `
SELECT id, user_id, user_name, user_image_url, title, image_url, servings, cook_time, instructions, num_likes, created_at, updated_at
FROM items`
	conditions, args := filterConditions(filter)
	query += whereClause(conditions) + `
ORDER BY id ASC`

	return r.queryItems(ctx, query, args...)
}

func (r *ItemRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Item, error) {
	return r.queryItems(ctx, `
SELECT id, user_id, user_name, user_image_url, title, image_url, servings, cook_time, instructions, num_likes, created_at, updated_at
FROM items
WHERE user_id = ?
ORDER BY id ASC`, userID)
}

func (r *ItemRepository) ListLikedBy(ctx context.Context, userID int64, filter repository.ItemFilter) ([]domain.Item, error) {
	query := `
SELECT id, user_id, user_name, user_image_url, title, image_url, servings, cook_time, instructions, num_likes, created_at, updated_at
FROM items`
	conditions := []string{`EXISTS (SELECT 1 FROM item_likes l WHERE l.item_id = items.id AND l.user_id = ?)`}
	args := []any{userID}

	filterConds, filterArgs := filterConditions(filter)
	conditions = append(conditions, filterConds...)
	args = append(args, filterArgs...)

	query += whereClause(conditions) + `
ORDER BY id ASC`

	return r.queryItems(ctx, query, args...)
}

// ToggleLike flips like-set membership and adjusts num_likes inside a
// single transaction so the counter can never drift from the set.
func (r *ItemRepository) ToggleLike(ctx context.Context, itemID, userID int64) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists int64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM items WHERE id = ?`, itemID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, domain.ErrItemNotFound
		}
		return false, fmt.Errorf("check item: %w", err)
	}

	liked := true
	var ignored int64
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM item_likes WHERE item_id = ? AND user_id = ?`, itemID, userID).Scan(&ignored)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		liked = false
	case err != nil:
		return false, fmt.Errorf("check like: %w", err)
	}

	if liked {
		if _, err := tx.ExecContext(ctx, `DELETE FROM item_likes WHERE item_id = ? AND user_id = ?`, itemID, userID); err != nil {
			return false, fmt.Errorf("remove like: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE items SET num_likes = num_likes - 1, updated_at = ? WHERE id = ?`, time.Now().UTC(), itemID); err != nil {
			return false, fmt.Errorf("decrement likes: %w", err)
		}
	} else {
		if _, err := tx.ExecContext(ctx, `INSERT INTO item_likes (item_id, user_id) VALUES (?, ?)`, itemID, userID); err != nil {
			return false, fmt.Errorf("add like: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE items SET num_likes = num_likes + 1, updated_at = ? WHERE id = ?`, time.Now().UTC(), itemID); err != nil {
			return false, fmt.Errorf("increment likes: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit tx: %w", err)
	}
	return !liked, nil
}

func (r *ItemRepository) AddComment(ctx context.Context, comment *domain.Comment) (int64, error) {
	var exists int64
	if err := r.db.QueryRowContext(ctx, `SELECT id FROM items WHERE id = ?`, comment.ItemID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrItemNotFound
		}
		return 0, fmt.Errorf("check item: %w", err)
	}

	comment.CreatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
INSERT INTO item_comments (item_id, user_id, user_name, user_image_url, text, created_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		comment.ItemID,
		comment.UserID,
		comment.UserName,
		comment.UserImageURL,
		comment.Text,
		comment.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert comment: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("comment last insert id: %w", err)
	}
	comment.ID = id
	return id, nil
}

func (r *ItemRepository) queryItems(ctx context.Context, query string, args ...any) ([]domain.Item, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}

	for i := range items {
		if err := r.loadChildren(ctx, &items[i]); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (r *ItemRepository) loadChildren(ctx context.Context, item *domain.Item) error {
	rows, err := r.db.QueryContext(ctx, `
SELECT category FROM item_categories WHERE item_id = ? ORDER BY category ASC`, item.ID)
	if err != nil {
		return fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return fmt.Errorf("scan category: %w", err)
		}
		item.Categories = append(item.Categories, category)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate categories: %w", err)
	}

	ingRows, err := r.db.QueryContext(ctx, `
SELECT ingredient_id, name, amount FROM item_ingredients WHERE item_id = ? ORDER BY id ASC`, item.ID)
	if err != nil {
		return fmt.Errorf("query ingredients: %w", err)
	}
	defer ingRows.Close()
	for ingRows.Next() {
		var ing domain.Ingredient
		if err := ingRows.Scan(&ing.ID, &ing.Name, &ing.Amount); err != nil {
			return fmt.Errorf("scan ingredient: %w", err)
		}
		item.Ingredients = append(item.Ingredients, ing)
	}
	if err := ingRows.Err(); err != nil {
		return fmt.Errorf("iterate ingredients: %w", err)
	}

	commentRows, err := r.db.QueryContext(ctx, `
SELECT id, item_id, user_id, user_name, user_image_url, text, created_at
FROM item_comments
WHERE item_id = ?
ORDER BY id ASC`, item.ID)
	if err != nil {
		return fmt.Errorf("query comments: %w", err)
	}
	defer commentRows.Close()
	for commentRows.Next() {
		var comment domain.Comment
		if err := commentRows.Scan(
			&comment.ID,
			&comment.ItemID,
			&comment.UserID,
			&comment.UserName,
			&comment.UserImageURL,
			&comment.Text,
			&comment.CreatedAt,
		); err != nil {
			return fmt.Errorf("scan comment: %w", err)
		}
		item.Comments = append(item.Comments, comment)
	}
	if err := commentRows.Err(); err != nil {
		return fmt.Errorf("iterate comments: %w", err)
	}

	likeRows, err := r.db.QueryContext(ctx, `
SELECT user_id FROM item_likes WHERE item_id = ? ORDER BY user_id ASC`, item.ID)
	if err != nil {
		return fmt.Errorf("query likes: %w", err)
	}
	defer likeRows.Close()
	for likeRows.Next() {
		var userID int64
		if err := likeRows.Scan(&userID); err != nil {
			return fmt.Errorf("scan like: %w", err)
		}
		item.Likes = append(item.Likes, userID)
	}
	return likeRows.Err()
}

func insertCategories(ctx context.Context, tx *sql.Tx, itemID int64, categories []string) error {
	for _, category := range categories {
		if _, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO item_categories (item_id, category) VALUES (?, ?)`, itemID, category); err != nil {
			return fmt.Errorf("insert category: %w", err)
		}
	}
	return nil
}

func insertIngredients(ctx context.Context, tx *sql.Tx, itemID int64, ingredients []domain.Ingredient) error {
	for _, ing := range ingredients {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO item_ingredients (item_id, ingredient_id, name, amount) VALUES (?, ?, ?, ?)`,
			itemID, ing.ID, ing.Name, ing.Amount); err != nil {
			return fmt.Errorf("insert ingredient: %w", err)
		}
	}
	return nil
}

func filterConditions(filter repository.ItemFilter) ([]string, []any) {
	var conditions []string
	var args []any
	if filter.Keyword != "" {
		conditions = append(conditions, `LOWER(title) LIKE '%' || LOWER(?) || '%'`)
		args = append(args, filter.Keyword)
	}
	if filter.Category != "" {
		conditions = append(conditions, `EXISTS (SELECT 1 FROM item_categories c WHERE c.item_id = items.id AND c.category = ?)`)
		args = append(args, filter.Category)
	}
	return conditions, args
}

func whereClause(conditions []string) string {
	if len(conditions) == 0 {
		return ""
	}
	clause := `
WHERE ` + conditions[0]
	for _, condition := range conditions[1:] {
		clause += `
AND ` + condition
	}
	return clause
}

func scanItem(row interface {
	Scan(dest ...any) error
}) (*domain.Item, error) {
	var item domain.Item
	if err := row.Scan(
		&item.ID,
		&item.UserID,
		&item.UserName,
		&item.UserImageURL,
		&item.Title,
		&item.ImageURL,
		&item.Servings,
		&item.CookTime,
		&item.Instructions,
		&item.NumLikes,
		&item.CreatedAt,
		&item.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("scan item: %w", err)
	}
	return &item, nil
}
