package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"linkflowd/internal/model"
	logx "linkflowd/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

// querier is satisfied by both *sql.DB and *sql.Tx so the read helpers
// can run standalone or inside the snapshot transaction.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("store: sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	busy := int64(5000)
	if cfg.BusyTimeout > 0 {
		busy = cfg.BusyTimeout.Milliseconds()
	}
	// Pragmas go in the DSN so every pooled connection gets them;
	// foreign_keys in particular is per-connection state.
	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)", path, busy)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	st := &sqliteStore{db: db, log: log}
	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := st.seedDefaults(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) seedDefaults(ctx context.Context) error {
	var lists int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM lists`).Scan(&lists); err != nil {
		return err
	}
	if lists == 0 {
		for _, l := range defaultLists() {
			if err := s.CreateList(ctx, l); err != nil {
				return err
			}
		}
		s.log.Info("seeded default lists", logx.Int("count", len(defaultLists())))
	}

	var schemes int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schemes`).Scan(&schemes); err != nil {
		return err
	}
	if schemes == 0 {
		for _, sc := range defaultSchemes() {
			if err := s.CreateScheme(ctx, sc); err != nil {
				return err
			}
		}
		s.log.Info("seeded default schemes", logx.Int("count", len(defaultSchemes())))
	}
	return nil
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ---- tasks ----

const taskColumns = `id, list_id, title, detail, completed, due_date, time,
	reminder, reminder_offset_minutes, repeat_type, repeat_day_of_week, repeat_day_of_month`

func (s *sqliteStore) LoadTasks(ctx context.Context) ([]model.Task, error) {
	return loadTasks(ctx, s.db)
}

func loadTasks(ctx context.Context, q querier) ([]model.Task, error) {
	actions, err := loadActions(ctx, q)
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks
		ORDER BY completed ASC, due_date IS NULL ASC, due_date ASC, time IS NULL ASC, time ASC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		t.Actions = actions[t.ID]
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *sqliteStore) GetTask(ctx context.Context, id string) (model.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, ErrNotFound
	}
	if err != nil {
		return model.Task{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT scheme_id, params FROM task_actions WHERE task_id = ? ORDER BY position ASC`, id)
	if err != nil {
		return model.Task{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var b model.ActionBinding
		var params string
		if err := rows.Scan(&b.SchemeID, &params); err != nil {
			return model.Task{}, err
		}
		_ = json.Unmarshal([]byte(params), &b.Params)
		t.Actions = append(t.Actions, b)
	}
	return t, rows.Err()
}

func (s *sqliteStore) CreateTask(ctx context.Context, t model.Task) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		cols, err := taskToColumns(t)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO tasks (`+taskColumns+`)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`, cols...)
		if err != nil {
			return err
		}
		return replaceActions(ctx, tx, t.ID, t.Actions)
	})
}

func (s *sqliteStore) SaveTask(ctx context.Context, t model.Task) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		cols, err := taskToColumns(t)
		if err != nil {
			return err
		}
		// Shift id to the end for the WHERE clause.
		args := append(cols[1:], cols[0])
		res, err := tx.ExecContext(ctx, `UPDATE tasks SET
			list_id = ?, title = ?, detail = ?, completed = ?, due_date = ?, time = ?,
			reminder = ?, reminder_offset_minutes = ?,
			repeat_type = ?, repeat_day_of_week = ?, repeat_day_of_month = ?,
			updated_at = CURRENT_TIMESTAMP
			WHERE id = ?`, args...)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return replaceActions(ctx, tx, t.ID, t.Actions)
	})
}

func (s *sqliteStore) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func loadActions(ctx context.Context, q querier) (map[string][]model.ActionBinding, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT task_id, scheme_id, params FROM task_actions ORDER BY task_id ASC, position ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string][]model.ActionBinding{}
	for rows.Next() {
		var taskID, schemeID, params string
		if err := rows.Scan(&taskID, &schemeID, &params); err != nil {
			return nil, err
		}
		b := model.ActionBinding{SchemeID: schemeID}
		_ = json.Unmarshal([]byte(params), &b.Params)
		out[taskID] = append(out[taskID], b)
	}
	return out, rows.Err()
}

func replaceActions(ctx context.Context, tx *sql.Tx, taskID string, actions []model.ActionBinding) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM task_actions WHERE task_id = ?`, taskID); err != nil {
		return err
	}
	for i, a := range actions {
		params, err := json.Marshal(a.Params)
		if err != nil {
			return err
		}
		if params == nil || a.Params == nil {
			params = []byte("[]")
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO task_actions (task_id, position, scheme_id, params) VALUES (?,?,?,?)`,
			taskID, i, a.SchemeID, string(params)); err != nil {
			return err
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(r rowScanner) (model.Task, error) {
	var (
		t              model.Task
		listID, detail sql.NullString
		dueDate, tm    sql.NullString
		completed      int64
		remEnabled     sql.NullInt64
		remOffset      sql.NullInt64
		repeatType     sql.NullString
		dowJSON        sql.NullString
		domJSON        sql.NullString
	)
	err := r.Scan(&t.ID, &listID, &t.Title, &detail, &completed, &dueDate, &tm,
		&remEnabled, &remOffset, &repeatType, &dowJSON, &domJSON)
	if err != nil {
		return model.Task{}, err
	}
	t.ListID = listID.String
	t.Detail = detail.String
	t.Completed = completed != 0
	t.DueDate = dueDate.String
	t.Time = tm.String
	if remEnabled.Valid && remEnabled.Int64 != 0 {
		off := remOffset.Int64
		if off < 0 {
			off = 0
		}
		t.Reminder = &model.Reminder{Kind: model.ReminderRelative, OffsetMinutes: off}
	}
	if repeatType.Valid && repeatType.String != "" {
		rule := &model.RepeatRule{Kind: model.RepeatKind(repeatType.String)}
		if dowJSON.Valid {
			_ = json.Unmarshal([]byte(dowJSON.String), &rule.DaysOfWeek)
		}
		if domJSON.Valid {
			_ = json.Unmarshal([]byte(domJSON.String), &rule.DaysOfMonth)
		}
		t.Repeat = rule
	}
	return t, nil
}

func taskToColumns(t model.Task) ([]any, error) {
	var remEnabled, remOffset any
	if t.Reminder != nil {
		n := t.Reminder.Normalize()
		remEnabled, remOffset = int64(1), n.OffsetMinutes
	}

	var repeatType, dowJSON, domJSON any
	if t.Repeat != nil {
		repeatType = string(t.Repeat.Kind)
		if t.Repeat.DaysOfWeek != nil {
			b, err := json.Marshal(t.Repeat.DaysOfWeek)
			if err != nil {
				return nil, err
			}
			dowJSON = string(b)
		}
		if t.Repeat.DaysOfMonth != nil {
			b, err := json.Marshal(t.Repeat.DaysOfMonth)
			if err != nil {
				return nil, err
			}
			domJSON = string(b)
		}
	}

	return []any{
		t.ID, nullStr(t.ListID), t.Title, nullStr(t.Detail), boolToInt(t.Completed),
		nullStr(t.DueDate), nullStr(t.Time), remEnabled, remOffset,
		repeatType, dowJSON, domJSON,
	}, nil
}

// ---- lists ----

func (s *sqliteStore) ListLists(ctx context.Context) ([]model.List, error) {
	return listLists(ctx, s.db)
}

func listLists(ctx context.Context, q querier) ([]model.List, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, name, icon FROM lists ORDER BY rowid ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.List
	for rows.Next() {
		var l model.List
		if err := rows.Scan(&l.ID, &l.Name, &l.Icon); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *sqliteStore) CreateList(ctx context.Context, l model.List) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO lists (id, name, icon) VALUES (?,?,?)`, l.ID, l.Name, l.Icon)
	return err
}

func (s *sqliteStore) UpdateList(ctx context.Context, l model.List) error {
	res, err := s.db.ExecContext(ctx, `UPDATE lists SET name = ?, icon = ? WHERE id = ?`, l.Name, l.Icon, l.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sqliteStore) DeleteList(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM lists WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ---- schemes ----

func (s *sqliteStore) ListSchemes(ctx context.Context) ([]model.Scheme, error) {
	return listSchemes(ctx, s.db)
}

func listSchemes(ctx context.Context, q querier) ([]model.Scheme, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, name, icon, template, kind, param_type FROM schemes ORDER BY rowid ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Scheme
	for rows.Next() {
		var sc model.Scheme
		if err := rows.Scan(&sc.ID, &sc.Name, &sc.Icon, &sc.Template, &sc.Kind, &sc.ParamType); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (s *sqliteStore) GetScheme(ctx context.Context, id string) (model.Scheme, error) {
	var sc model.Scheme
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, icon, template, kind, param_type FROM schemes WHERE id = ?`, id).
		Scan(&sc.ID, &sc.Name, &sc.Icon, &sc.Template, &sc.Kind, &sc.ParamType)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Scheme{}, ErrNotFound
	}
	return sc, err
}

func (s *sqliteStore) CreateScheme(ctx context.Context, sc model.Scheme) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO schemes (id, name, icon, template, kind, param_type) VALUES (?,?,?,?,?,?)`,
		sc.ID, sc.Name, sc.Icon, sc.Template, string(sc.Kind), string(sc.ParamType))
	return err
}

func (s *sqliteStore) UpdateScheme(ctx context.Context, sc model.Scheme) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE schemes SET name = ?, icon = ?, template = ?, kind = ?, param_type = ? WHERE id = ?`,
		sc.Name, sc.Icon, sc.Template, string(sc.Kind), string(sc.ParamType), sc.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sqliteStore) DeleteScheme(ctx context.Context, id string) error {
	// task_actions rows cascade via FK.
	res, err := s.db.ExecContext(ctx, `DELETE FROM schemes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ---- snapshot / restore ----

// Snapshot reads all three tables inside one transaction so a concurrent
// scheme delete cannot leave a task binding without its scheme.
func (s *sqliteStore) Snapshot(ctx context.Context) (Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Snapshot{}, err
	}
	defer tx.Rollback()

	lists, err := listLists(ctx, tx)
	if err != nil {
		return Snapshot{}, err
	}
	tasks, err := loadTasks(ctx, tx)
	if err != nil {
		return Snapshot{}, err
	}
	schemes, err := listSchemes(ctx, tx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Lists: lists, Tasks: tasks, Schemes: schemes}, nil
}

func (s *sqliteStore) Restore(ctx context.Context, snap Snapshot) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"task_actions", "fired_actions", "tasks", "schemes", "lists"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
				return err
			}
		}
		for _, l := range snap.Lists {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO lists (id, name, icon) VALUES (?,?,?)`, l.ID, l.Name, l.Icon); err != nil {
				return err
			}
		}
		for _, sc := range snap.Schemes {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO schemes (id, name, icon, template, kind, param_type) VALUES (?,?,?,?,?,?)`,
				sc.ID, sc.Name, sc.Icon, sc.Template, string(sc.Kind), string(sc.ParamType)); err != nil {
				return err
			}
		}
		for _, t := range snap.Tasks {
			cols, err := taskToColumns(t)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO tasks (`+taskColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`, cols...); err != nil {
				return err
			}
			if err := replaceActions(ctx, tx, t.ID, t.Actions); err != nil {
				return err
			}
		}
		return nil
	})
}

// ---- fired actions (dedupe.Backend) ----

func (s *sqliteStore) PutFired(ctx context.Context, key string, at time.Time) error {
	if key == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fired_actions (key, fired_at) VALUES (?,?)
		 ON CONFLICT(key) DO UPDATE SET fired_at = excluded.fired_at`,
		key, at.UnixMilli())
	return err
}

func (s *sqliteStore) HasFired(ctx context.Context, key string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM fired_actions WHERE key = ?)`, key).Scan(&exists)
	return exists != 0, err
}

func (s *sqliteStore) PruneFired(ctx context.Context, olderThan time.Time) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM fired_actions WHERE fired_at < ?`, olderThan.UnixMilli())
	return err
}

// ---- helpers ----

func (s *sqliteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func nullStr(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
