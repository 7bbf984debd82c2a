package directory

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/srwicak/freelance-directory/config"
	"github.com/srwicak/freelance-directory/fieldcrypt"
	"github.com/srwicak/freelance-directory/hrana"
)

// DefaultTable is the table holding freelancer rows.
const DefaultTable = "users"

// IDLength is the length of generated freelancer IDs.
const IDLength = 10

// Page size limits for List.
const (
	DefaultPageSize = 12
	MaxPageSize     = 100
)

// decryptWorkers bounds concurrent row decryption in List.
const decryptWorkers = 8

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Executor runs one statement. *hrana.Client satisfies it.
type Executor interface {
	Execute(ctx context.Context, sql string, args ...any) (*hrana.ResultSet, error)
}

// Config controls a Repository.
type Config struct {
	// Source provides ENCRYPTION_KEY, and the endpoint settings when Client
	// is nil. Defaults to the process environment.
	Source config.Source

	// Client overrides the statement executor.
	Client Executor

	// Table overrides DefaultTable.
	Table string

	// NewID overrides ID generation.
	NewID func() (string, error)

	// Now overrides the clock used for created_at.
	Now func() time.Time
}

// Repository reads and writes freelancer profiles.
// It is safe for concurrent use.
type Repository struct {
	exec    Executor
	src     config.Source
	table   string
	plan    *tablePlan
	newID   func() (string, error)
	now     func() time.Time
	maskers map[MaskType]Masker
}

// New creates a Repository. Configuration values are not read here; each
// operation resolves them when it runs.
func New(cfg Config) (*Repository, error) {
	plan, err := planFor[Freelancer]()
	if err != nil {
		return nil, err
	}

	r := &Repository{
		exec:    cfg.Client,
		src:     cfg.Source,
		table:   cfg.Table,
		plan:    plan,
		newID:   cfg.NewID,
		now:     cfg.Now,
		maskers: builtinMaskers(),
	}

	if r.src == nil {
		r.src = config.Env()
	}
	if r.exec == nil {
		r.exec = hrana.New(hrana.Config{Source: r.src})
	}
	if r.table == "" {
		r.table = DefaultTable
	}
	if !identPattern.MatchString(r.table) {
		return nil, fmt.Errorf("invalid table name %q", r.table)
	}
	if r.newID == nil {
		r.newID = func() (string, error) { return gonanoid.New(IDLength) }
	}
	if r.now == nil {
		r.now = time.Now
	}

	return r, nil
}

// Register validates and stores a new freelancer and returns its ID.
func (r *Repository) Register(ctx context.Context, in RegisterInput) (string, error) {
	start := time.Now()
	id, err := r.register(ctx, in)
	emitRegisterComplete(ctx, r.table, id, time.Since(start), err)
	return id, newOperationError(OpRegister, err)
}

func (r *Repository) register(ctx context.Context, in RegisterInput) (string, error) {
	if err := in.validate(); err != nil {
		return "", err
	}

	c, err := fieldcrypt.FromSource(r.src)
	if err != nil {
		return "", err
	}

	id, err := r.newID()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}

	f := Freelancer{
		ID:        id,
		Name:      in.Name,
		Whatsapp:  in.Whatsapp,
		Field:     in.Field,
		Province:  in.Province,
		City:      in.City,
		Details:   in.Details,
		Portfolio: in.Portfolio,
		LinkedIn:  in.LinkedIn,
		CreatedAt: r.now().Unix(),
	}

	rec, err := fieldcrypt.EncryptFields(ctx, c, r.plan.record(reflect.ValueOf(f)), r.plan.encrypted())
	if err != nil {
		return "", err
	}

	cols := r.plan.names()
	args := make([]any, len(cols))
	for i, col := range cols {
		args[i] = rec[col]
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		r.table, strings.Join(cols, ", "), placeholders(len(cols)))

	if _, err := r.exec.Execute(ctx, query, args...); err != nil {
		return "", err
	}

	return id, nil
}

// ListOptions narrows and pages a listing.
type ListOptions struct {
	// Field keeps only rows with this exact field of expertise.
	Field string

	// Search keeps rows whose name, field, details, city or province
	// contains the term, ignoring case.
	Search string

	// Page is 1-based. Values below 1 select the first page.
	Page int

	// PageSize defaults to DefaultPageSize and is capped at MaxPageSize.
	PageSize int

	// MaskContacts applies send.mask and send.redact to every item.
	MaskContacts bool
}

// Page is one page of a listing.
type Page struct {
	Items    []Freelancer `json:"items"`
	Total    int          `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
	Pages    int          `json:"pages"`
}

// List returns freelancers newest first.
//
// Encrypted columns cannot be matched in SQL, so Field is applied by the
// database and Search after decryption. Total counts matches across all pages.
func (r *Repository) List(ctx context.Context, opts ListOptions) (*Page, error) {
	start := time.Now()
	page, rows, err := r.list(ctx, opts)
	matches := 0
	if page != nil {
		matches = page.Total
	}
	emitListComplete(ctx, r.table, rows, matches, time.Since(start), err)
	return page, newOperationError(OpList, err)
}

func (r *Repository) list(ctx context.Context, opts ListOptions) (*Page, int, error) {
	c, err := fieldcrypt.FromSource(r.src)
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(r.plan.names(), ", "), r.table)
	var args []any
	if field := strings.TrimSpace(opts.Field); field != "" {
		query += " WHERE field = ?"
		args = append(args, field)
	}
	query += " ORDER BY created_at DESC"

	rs, err := r.exec.Execute(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	all, err := r.decode(ctx, c, rs.Map())
	if err != nil {
		return nil, len(rs.Rows), err
	}

	matched := all[:0]
	for _, f := range all {
		if f.matches(opts.Search) {
			matched = append(matched, f)
		}
	}

	page := paginate(matched, opts.Page, opts.PageSize)
	if opts.MaskContacts {
		for i := range page.Items {
			r.plan.conceal(reflect.ValueOf(&page.Items[i]).Elem(), r.maskers)
		}
	}

	return page, len(rs.Rows), nil
}

// decode decrypts and maps rows concurrently, keeping their order.
func (r *Repository) decode(ctx context.Context, c *fieldcrypt.Cipher, rows []*hrana.Row) ([]Freelancer, error) {
	out := make([]Freelancer, len(rows))
	cols := r.plan.decrypted()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(decryptWorkers)
	for i, row := range rows {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			plain := fieldcrypt.DecryptFields(gctx, c, row, cols)
			return r.plan.load(plain, reflect.ValueOf(&out[i]).Elem())
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func paginate(items []Freelancer, page, size int) *Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	if page < 1 {
		page = 1
	}

	total := len(items)
	pages := (total + size - 1) / size

	lo := (page - 1) * size
	if lo > total {
		lo = total
	}
	hi := min(lo+size, total)

	return &Page{
		Items:    append([]Freelancer{}, items[lo:hi]...),
		Total:    total,
		Page:     page,
		PageSize: size,
		Pages:    pages,
	}
}

// Get returns one freelancer by ID.
func (r *Repository) Get(ctx context.Context, id string) (*Freelancer, error) {
	start := time.Now()
	f, err := r.get(ctx, id)
	emitGetComplete(ctx, r.table, id, time.Since(start), err)
	return f, newOperationError(OpGet, err)
}

func (r *Repository) get(ctx context.Context, id string) (*Freelancer, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, &ValidationError{Fields: []string{"id"}}
	}

	c, err := fieldcrypt.FromSource(r.src)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? LIMIT 1", strings.Join(r.plan.names(), ", "), r.table)
	rs, err := r.exec.Execute(ctx, query, id)
	if err != nil {
		return nil, err
	}

	rows := rs.Map()
	if len(rows) == 0 {
		return nil, ErrNotFound
	}

	out, err := r.decode(ctx, c, rows[:1])
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// Update changes the provided fields of one freelancer.
func (r *Repository) Update(ctx context.Context, id string, in UpdateInput) error {
	start := time.Now()
	n, err := r.update(ctx, id, in)
	emitUpdateComplete(ctx, r.table, id, n, time.Since(start), err)
	return newOperationError(OpUpdate, err)
}

func (r *Repository) update(ctx context.Context, id string, in UpdateInput) (int, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return 0, &ValidationError{Fields: []string{"id"}}
	}

	changes, err := in.changes()
	if err != nil {
		return 0, err
	}

	c, err := fieldcrypt.FromSource(r.src)
	if err != nil {
		return 0, err
	}

	changes, err = fieldcrypt.EncryptFields(ctx, c, changes, r.plan.encrypted())
	if err != nil {
		return 0, err
	}

	var sets []string
	var args []any
	for _, col := range r.plan.names() {
		v, ok := changes[col]
		if !ok {
			continue
		}
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", r.table, strings.Join(sets, ", "))
	rs, err := r.exec.Execute(ctx, query, args...)
	if err != nil {
		return len(sets), err
	}
	if rs.AffectedRows == 0 {
		return len(sets), ErrNotFound
	}

	return len(sets), nil
}

// Exists reports whether a freelancer with id is stored.
func (r *Repository) Exists(ctx context.Context, id string) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, nil
	}

	query := fmt.Sprintf("SELECT 1 FROM %s WHERE id = ? LIMIT 1", r.table)
	rs, err := r.exec.Execute(ctx, query, id)
	if err != nil {
		return false, newOperationError(OpExists, err)
	}
	return len(rs.Rows) > 0, nil
}

// Ping checks that the endpoint accepts statements.
func (r *Repository) Ping(ctx context.Context) error {
	_, err := r.exec.Execute(ctx, "SELECT 1")
	return newOperationError(OpPing, err)
}

// Conceal returns a copy of v with send.mask and send.redact applied.
func Conceal[T Cloner[T]](v T) (T, error) {
	plan, err := planFor[T]()
	if err != nil {
		var zero T
		return zero, err
	}

	out := v.Clone()
	plan.conceal(reflect.ValueOf(&out).Elem(), builtinMaskers())
	return out, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
