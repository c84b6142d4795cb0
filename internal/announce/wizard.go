package announce

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
)

type Step int

const (
	StepIdentify Step = iota + 1
	StepCondition
	StepPhotos
)

func (s Step) String() string {
	switch s {
	case StepIdentify:
		return "identify"
	case StepCondition:
		return "condition"
	case StepPhotos:
		return "photos"
	default:
		return "unknown"
	}
}

// ParseStep is the inverse of Step.String.
func ParseStep(s string) (Step, bool) {
	for _, st := range []Step{StepIdentify, StepCondition, StepPhotos} {
		if st.String() == s {
			return st, true
		}
	}
	return 0, false
}

// BookInfo is the identity of the book being sold.
type BookInfo struct {
	ISBN          string
	Title         string
	Authors       []string
	Publisher     string
	PublishedDate string
	PageCount     int
	Categories    []string
	CoverURL      string
	Description   string
}

func (b BookInfo) HasIdentity() bool { return strings.TrimSpace(b.Title) != "" }

// Details are the seller supplied fields that do not come from the lookup.
type Details struct {
	MarketPrice float64
	Category    string
	Description string
	Location    string
}

// Draft is a snapshot of the wizard state.
type Draft struct {
	EditID     string
	Step       Step
	Book       BookInfo
	Manual     bool
	Message    string
	Details    Details
	Checklist  Checklist
	Photos     []Photo
	Cover      *Photo
	Verdict    *Verdict
	Categories []string
}

func (d Draft) Assessment() Assessment {
	return Assess(d.Checklist, d.Details.MarketPrice)
}

func (d Draft) Editing() bool { return d.EditID != "" }

type Option func(*Wizard)

func WithAnalyzer(a Analyzer) Option {
	return func(w *Wizard) { w.analyzer = a }
}

// WithMaxWidth sets the width photos are scaled down to. Zero disables resizing.
func WithMaxWidth(px uint) Option {
	return func(w *Wizard) { w.maxWidth = px }
}

func WithLogger(l *slog.Logger) Option {
	return func(w *Wizard) { w.log = l }
}

// Wizard drives one announcement draft through identify, condition and photos.
// It is safe for concurrent use.
type Wizard struct {
	mu       sync.Mutex
	backend  Backend
	analyzer Analyzer
	maxWidth uint
	log      *slog.Logger
	draft    Draft
}

func NewWizard(backend Backend, opts ...Option) *Wizard {
	w := &Wizard{
		backend:  backend,
		analyzer: ChecklistAnalyzer{},
		maxWidth: DefaultMaxWidth,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.draft = Draft{Step: StepIdentify, Checklist: NewChecklist()}
	return w
}

// Draft returns a copy of the current state.
func (w *Wizard) Draft() Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot()
}

func (w *Wizard) snapshot() Draft {
	d := w.draft
	d.Book.Authors = append([]string(nil), w.draft.Book.Authors...)
	d.Book.Categories = append([]string(nil), w.draft.Book.Categories...)
	d.Checklist = w.draft.Checklist.Clone()
	d.Photos = append([]Photo(nil), w.draft.Photos...)
	d.Categories = append([]string(nil), w.draft.Categories...)
	if w.draft.Cover != nil {
		c := *w.draft.Cover
		d.Cover = &c
	}
	if w.draft.Verdict != nil {
		v := *w.draft.Verdict
		d.Verdict = &v
	}
	return d
}

func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft.Step
}

// Next advances one step. Leaving identify requires a book identity.
func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch w.draft.Step {
	case StepIdentify:
		if !w.draft.Book.HasIdentity() {
			return ErrNoIdentity
		}
		w.draft.Step = StepCondition
	case StepCondition:
		w.draft.Step = StepPhotos
	default:
		return ErrWrongStep
	}
	return nil
}

func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.draft.Step <= StepIdentify {
		return ErrWrongStep
	}
	w.draft.Step--
	return nil
}

// Lookup asks the backend for the book behind isbn. On a miss, or when the
// backend cannot be reached, the draft switches to manual entry and keeps a
// message for the seller.
func (w *Wizard) Lookup(ctx context.Context, isbn string) error {
	w.mu.Lock()
	if w.draft.Step != StepIdentify {
		w.mu.Unlock()
		return ErrWrongStep
	}
	w.mu.Unlock()

	isbn = strings.TrimSpace(isbn)
	if normalized, err := NormalizeISBN(isbn); err == nil {
		isbn = normalized
	}
	res, err := w.backend.LookupISBN(ctx, isbn)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.Book = BookInfo{ISBN: isbn}
	w.draft.Verdict = nil
	switch {
	case err != nil:
		w.draft.Manual = true
		w.draft.Message = "Erreur lors de la recherche ISBN. Vous pouvez saisir le livre manuellement."
		return fmt.Errorf("lookup isbn %q: %w", isbn, err)
	case !res.Found || res.Book == nil:
		w.draft.Manual = true
		w.draft.Message = res.Message
		if w.draft.Message == "" {
			w.draft.Message = "Livre non trouvé. Vous pouvez saisir les informations manuellement."
		}
		return ErrBookNotFound
	}

	b := res.Book
	w.draft.Manual = false
	w.draft.Message = ""
	w.draft.Book = BookInfo{
		ISBN:          isbn,
		Title:         b.Title,
		Authors:       b.Authors,
		Publisher:     b.Publisher,
		PublishedDate: b.PublishedDate,
		PageCount:     b.PageCount,
		Categories:    b.Categories,
		CoverURL:      b.CoverImageURL,
		Description:   b.Description,
	}
	if w.draft.Details.Category == "" && len(b.Categories) > 0 {
		w.draft.Details.Category = b.Categories[0]
	}
	return nil
}

// LoadCategories fetches the category list offered during manual entry.
// It is fetched once per draft.
func (w *Wizard) LoadCategories(ctx context.Context) ([]string, error) {
	w.mu.Lock()
	if len(w.draft.Categories) > 0 {
		out := append([]string(nil), w.draft.Categories...)
		w.mu.Unlock()
		return out, nil
	}
	w.mu.Unlock()

	cats, err := w.backend.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	w.mu.Lock()
	w.draft.Categories = append([]string(nil), cats...)
	w.mu.Unlock()
	return cats, nil
}

// SetManual replaces the book identity with seller supplied data. The ISBN
// typed for the failed lookup is kept when info has none.
func (w *Wizard) SetManual(info BookInfo, cover *Photo) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.draft.Step != StepIdentify {
		return ErrWrongStep
	}
	if strings.TrimSpace(info.ISBN) == "" {
		info.ISBN = w.draft.Book.ISBN
	}
	w.draft.Book = info
	w.draft.Manual = true
	w.draft.Message = ""
	if cover != nil {
		resized, err := ResizePhoto(cover.Name, cover.Data, w.maxWidth)
		if err != nil {
			return err
		}
		w.draft.Cover = &resized
	}
	if len(info.Categories) > 0 && w.draft.Details.Category == "" {
		w.draft.Details.Category = info.Categories[0]
	}
	return nil
}

func (w *Wizard) SetDetails(d Details) {
	w.mu.Lock()
	defer w.mu.Unlock()
	d.Category = strings.TrimSpace(d.Category)
	d.Location = strings.TrimSpace(d.Location)
	w.draft.Details = d
}

func (w *Wizard) Toggle(cat Category, key string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.Verdict = nil
	return w.draft.Checklist.Toggle(cat, key)
}

// SetChecklist replaces the whole checklist. Missing checks count as unticked.
func (w *Wizard) SetChecklist(c Checklist) error {
	if err := c.Validate(); err != nil {
		return err
	}
	next := NewChecklist()
	for cat, checks := range c {
		for key, on := range checks {
			next[cat][key] = on
		}
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.Checklist = next
	w.draft.Verdict = nil
	return nil
}

func (w *Wizard) Assessment() Assessment {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Assess(w.draft.Checklist, w.draft.Details.MarketPrice)
}

// AddPhoto resizes and queues a photo for upload.
func (w *Wizard) AddPhoto(name string, data []byte) error {
	w.mu.Lock()
	full := len(w.draft.Photos) >= MaxPhotos
	w.mu.Unlock()
	if full {
		return ErrTooManyPhotos
	}

	p, err := ResizePhoto(name, data, w.maxWidth)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.draft.Photos) >= MaxPhotos {
		return ErrTooManyPhotos
	}
	w.draft.Photos = append(w.draft.Photos, p)
	w.draft.Verdict = nil
	return nil
}

func (w *Wizard) RemovePhoto(i int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if i < 0 || i >= len(w.draft.Photos) {
		return fmt.Errorf("photo %d: %w", i, ErrWrongStep)
	}
	w.draft.Photos = append(w.draft.Photos[:i:i], w.draft.Photos[i+1:]...)
	w.draft.Verdict = nil
	return nil
}

// Analyze runs the analyzer over the current photos and stores its verdict.
func (w *Wizard) Analyze(ctx context.Context) (Verdict, error) {
	d := w.Draft()
	if d.Step != StepPhotos {
		return Verdict{}, ErrWrongStep
	}
	v, err := w.analyzer.Analyze(ctx, d.Photos, d.Checklist)
	if err != nil {
		return Verdict{}, err
	}
	w.mu.Lock()
	w.draft.Verdict = &v
	w.mu.Unlock()
	return v, nil
}

// LoadExisting turns the draft into an edit of announcement id.
func (w *Wizard) LoadExisting(ctx context.Context, id string) error {
	if _, err := strconv.Atoi(id); err != nil {
		return fmt.Errorf("announcement id %q: %w", id, err)
	}
	a, err := w.backend.GetAnnouncement(ctx, id)
	if err != nil {
		return fmt.Errorf("load announcement %s: %w", id, err)
	}

	book := BookInfo{
		ISBN:          a.Book.ISBN,
		Title:         a.Book.Title,
		Authors:       splitList(a.Book.Authors),
		Publisher:     a.Book.Publisher,
		PublishedDate: a.Book.PublishedDate,
		PageCount:     a.Book.PageCount,
		Categories:    splitList(a.Book.Categories),
		CoverURL:      a.Book.CoverImageURL,
		Description:   a.Book.Description,
	}
	var photos []Photo
	for _, u := range a.CustomImages {
		if len(photos) == MaxPhotos {
			break
		}
		photos = append(photos, Photo{URL: u})
	}
	details := Details{
		MarketPrice: a.Price,
		Description: a.Description,
		Location:    a.Location,
	}
	if len(book.Categories) > 0 {
		details.Category = book.Categories[0]
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft = Draft{
		EditID:    id,
		Step:      StepIdentify,
		Book:      book,
		Details:   details,
		Checklist: FullChecklist(),
		Photos:    photos,
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsGuard reports whether err is one of the checks that run before any
// network call.
func IsGuard(err error) bool {
	for _, target := range []error{
		ErrInvalidISBN, ErrNoCategory, ErrNonPositivePrice,
		ErrTooManyPhotos, ErrNoIdentity, ErrWrongStep,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
