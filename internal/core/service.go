package core

// service.go wires the pipeline: workbook source -> header resolution ->
// row parsing -> reference loading -> reconciliation -> transactional apply.
// One import call is synchronous and single-threaded; cancellation is
// all-or-nothing.

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Faxeron/back-home-new-sub000/internal/logging"
	"github.com/Faxeron/back-home-new-sub000/internal/schema"
	"github.com/Faxeron/back-home-new-sub000/internal/workbook"
)

// Store is everything the service needs from persistence.
type Store interface {
	CatalogReader
	ExportReader
	TxRunner
}

// SourceOpener opens a workbook for reading. Pluggable so tests feed
// in-memory sheets.
type SourceOpener func(path string) (workbook.Source, error)

// Service is the import/export/template facade of the pricebook engine.
type Service struct {
	store        Store
	open         SourceOpener
	templatePath string
	maxFileSize  int64
	log          *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithSourceOpener replaces the workbook opener (used by tests).
func WithSourceOpener(open SourceOpener) Option {
	return func(s *Service) { s.open = open }
}

// WithTemplatePath sets the fixed path Template writes to.
func WithTemplatePath(path string) Option {
	return func(s *Service) { s.templatePath = path }
}

// WithMaxFileSize caps the accepted workbook size in bytes.
func WithMaxFileSize(n int64) Option {
	return func(s *Service) { s.maxFileSize = n }
}

// WithLogger replaces the default slog logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// NewService creates the service over a store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:        store,
		templatePath: "storage/templates/pricebook.xlsx",
		log:          slog.Default(),
	}
	s.open = func(path string) (workbook.Source, error) {
		if s.maxFileSize > 0 {
			info, err := os.Stat(path)
			if err != nil {
				return nil, fmt.Errorf("stat workbook: %w", err)
			}
			if info.Size() > s.maxFileSize {
				return nil, fmt.Errorf("workbook exceeds %d byte limit", s.maxFileSize)
			}
		}
		return workbook.Open(path)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Import ingests a pricebook workbook for the tenant/company scope and
// applies it atomically. A non-empty Summary.Errors means no mutation was
// applied; the returned error covers I/O and persistence failures only.
func (s *Service) Import(ctx context.Context, tenant, company, actingUser int64, path string) (Summary, error) {
	runID := logging.NewRunID()
	log := logging.WithRun(runID, tenant, company).With("user", actingUser)
	log.Info("import started", "file", filepath.Base(path))

	src, err := s.open(path)
	if err != nil {
		return Summary{}, err
	}
	defer src.Close()

	sheets, rep := s.parseSheets(src)

	if rep.Empty() {
		refs, err := LoadRefContext(ctx, s.store, tenant, company)
		if err != nil {
			return Summary{}, err
		}

		cs, engineRep := NewEngine(refs).Reconcile(sheets)
		rep.Merge(engineRep)

		if rep.Empty() {
			var sum Summary
			err := s.store.InTx(ctx, tenant, company, func(tx Tx) error {
				var applyErr error
				sum, applyErr = Persister{}.Apply(ctx, tx, cs, refs)
				return applyErr
			})
			if err != nil {
				log.Error("import failed", "error", err)
				return Summary{}, fmt.Errorf("apply change set: %w", err)
			}
			log.Info("import finished",
				"created", sum.Created, "updated", sum.Updated, "archived", sum.Archived)
			return sum, nil
		}
	}

	log.Warn("import rejected", "issues", len(rep.Issues))
	return Summary{Errors: rep.Strings()}, nil
}

// parseSheets reads and validates every data sheet. All sheets get their
// header check even when one fails, so multiple structural problems surface
// in one run; header-failed sheets contribute no rows.
func (s *Service) parseSheets(src workbook.Source) (*ParsedSheets, Report) {
	var rep Report
	out := &ParsedSheets{}

	headerOK := true
	raw := make(map[schema.Sheet][][]string, len(schema.DataSheets))
	indexes := make(map[schema.Sheet]HeaderIndex, len(schema.DataSheets))

	for _, sheet := range schema.DataSheets {
		rows, err := src.Rows(sheet)
		if err != nil {
			rep.Add(sheet, 0, "sheet is missing")
			headerOK = false
			continue
		}
		if len(rows) == 0 {
			rep.Add(sheet, 0, "sheet is empty")
			headerOK = false
			continue
		}
		resolved := ResolveHeaders(sheet, rows[0], &rep)
		idx, ok := ValidateHeaderSet(sheet, resolved, &rep)
		if !ok {
			headerOK = false
			continue
		}
		raw[sheet] = rows
		indexes[sheet] = idx
	}

	// Header-level problems abort row validation entirely; row-level passes
	// would only produce misleading follow-on errors.
	if !headerOK {
		return out, rep
	}

	out.Products = ParseProductRows(indexes[schema.SheetProducts], raw[schema.SheetProducts][1:], 2, &rep)
	out.Descriptions = ParseDescriptionRows(indexes[schema.SheetDescriptions], raw[schema.SheetDescriptions][1:], 2)
	out.Attributes = ParseAttributeRows(indexes[schema.SheetAttributes], raw[schema.SheetAttributes][1:], 2, &rep)
	out.Media = ParseMediaRows(indexes[schema.SheetMedia], raw[schema.SheetMedia][1:], 2, &rep)
	return out, rep
}

// Export writes the current catalog as a workbook to w.
func (s *Service) Export(ctx context.Context, tenant, company int64, out io.Writer) error {
	runID := logging.NewRunID()
	log := logging.WithRun(runID, tenant, company)

	w, err := workbook.NewWriter()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := NewExporter(s.store).Export(ctx, tenant, company, w); err != nil {
		log.Error("export failed", "error", err)
		return err
	}
	if err := w.Write(out); err != nil {
		return err
	}
	log.Info("export finished")
	return nil
}

// ExportToFile writes the export workbook to a file path.
func (s *Service) ExportToFile(ctx context.Context, tenant, company int64, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()
	return s.Export(ctx, tenant, company, f)
}

// Template writes the header-only workbook to the fixed template path and
// returns that path for re-download.
func (s *Service) Template() (string, error) {
	w, err := workbook.NewWriter()
	if err != nil {
		return "", err
	}
	defer w.Close()

	if err := WriteTemplate(w); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(s.templatePath), 0o755); err != nil {
		return "", fmt.Errorf("create template dir: %w", err)
	}
	if err := w.SaveTo(s.templatePath); err != nil {
		return "", err
	}
	return s.templatePath, nil
}
