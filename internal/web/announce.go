package web

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"dzkitab/internal/announce"
	"dzkitab/internal/httpx"
	"dzkitab/internal/platform/apiclient"
	"dzkitab/internal/routing"
	"dzkitab/internal/session"
)

const (
	maxUploadMemory = 8 << 20
	maxPhotoBytes   = 10 << 20
)

var wizardMessages = []struct {
	err error
	msg string
}{
	{announce.ErrInvalidISBN, "L'ISBN doit contenir exactement 10 ou 13 chiffres."},
	{announce.ErrNoCategory, "Veuillez choisir une catégorie."},
	{announce.ErrNonPositivePrice, "Le prix final doit être supérieur à 0. Vérifiez le prix du marché et l'état du livre."},
	{announce.ErrTooManyPhotos, "Vous ne pouvez ajouter que 4 photos maximum."},
	{announce.ErrNoIdentity, "Recherchez le livre par ISBN ou saisissez-le manuellement avant de continuer."},
	{announce.ErrWrongStep, "Action impossible à cette étape."},
	{announce.ErrInvalidImage, "Ce fichier n'est pas une image valide."},
	{announce.ErrNoPhotos, "Ajoutez au moins une photo avant l'analyse."},
	{announce.ErrUnknownCheck, "Critère d'état inconnu."},
}

func wizardMessage(err error) string {
	for _, m := range wizardMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return errorMessage(err)
}

type stepLink struct {
	Step    announce.Step
	Label   string
	Current bool
	Done    bool
}

type announceData struct {
	Draft      announce.Draft
	Assessment announce.Assessment
	Rubric     []announce.CategorySpec
	Categories []string
	Steps      []stepLink
	MaxPhotos  int
}

func (s *Server) addAnnounce(w http.ResponseWriter, r *http.Request) {
	visitor := httpx.VisitorIDFrom(r)
	wiz, err := s.wizardFor(r, visitor, routing.Param(r, "id"))
	if err != nil {
		if apiclient.IsStatus(err, http.StatusNotFound) {
			s.notFound(w, r)
			return
		}
		slog.WarnContext(r.Context(), "cannot load announcement for edit", "error", err)
		s.redirectWithFlash(w, r, "/", session.FlashError, errorMessage(err))
		return
	}

	if r.Method == http.MethodPost {
		s.announceAction(w, r, wiz, visitor)
		return
	}

	d := wiz.Draft()
	data := announceData{
		Draft:      d,
		Assessment: d.Assessment(),
		Rubric:     announce.Rubric,
		Steps:      stepLinks(d.Step),
		MaxPhotos:  announce.MaxPhotos,
	}
	if d.Manual || d.Step == announce.StepCondition {
		cats, err := wiz.LoadCategories(r.Context())
		if err != nil {
			slog.WarnContext(r.Context(), "categories unavailable", "error", err)
		}
		data.Categories = withCurrent(cats, d.Details.Category)
	}

	title := "Nouvelle annonce"
	if d.Editing() {
		title = "Modifier l'annonce"
	}
	s.render(w, r, http.StatusOK, "announce.html", title, data)
}

// wizardFor returns the visitor's draft, starting over when the request
// switches between creating and editing, or between two edited announcements.
func (s *Server) wizardFor(r *http.Request, visitor, editID string) (*announce.Wizard, error) {
	wiz := s.drafts.Get(visitor)
	d := wiz.Draft()
	switch {
	case editID == "" && d.Editing():
		wiz = s.drafts.Reset(visitor)
	case editID != "" && d.EditID != editID:
		wiz = s.drafts.Reset(visitor)
		if err := wiz.LoadExisting(r.Context(), editID); err != nil {
			s.drafts.Discard(visitor)
			return nil, err
		}
	}
	return wiz, nil
}

func (s *Server) announceAction(w http.ResponseWriter, r *http.Request, wiz *announce.Wizard, visitor string) {
	back := r.URL.Path
	if err := parseForm(r); err != nil {
		s.redirectWithFlash(w, r, back, session.FlashError, "Formulaire invalide.")
		return
	}
	ctx := r.Context()

	if err := applyStepForm(r, wiz); err != nil {
		s.redirectWithFlash(w, r, back, session.FlashError, wizardMessage(err))
		return
	}

	var err error
	switch action := r.PostFormValue("action"); action {
	case "lookup":
		err = wiz.Lookup(ctx, r.PostFormValue("isbn"))
		if errors.Is(err, announce.ErrBookNotFound) {
			// the draft carries the message and the manual form is shown
			err = nil
		}
	case "manual":
		err = s.applyManual(r, wiz)
	case "next":
		err = wiz.Next()
	case "back":
		err = wiz.Back()
	case "refresh":
	case "upload":
		err = addPhotos(r, wiz)
	case "remove":
		i, convErr := strconv.Atoi(r.PostFormValue("photo"))
		if convErr != nil {
			i = -1
		}
		err = wiz.RemovePhoto(i)
	case "analyze":
		_, err = wiz.Analyze(ctx)
	case "reset":
		s.drafts.Reset(visitor)
		http.Redirect(w, r, "/addannounce", http.StatusSeeOther)
		return
	case "submit":
		s.submitAnnounce(w, r, wiz, visitor)
		return
	default:
		err = fmt.Errorf("unknown action %q: %w", action, announce.ErrWrongStep)
	}

	if err != nil {
		slog.InfoContext(ctx, "announce action rejected", "error", err)
		s.flash(w, r, session.FlashError, wizardMessage(err))
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

func (s *Server) submitAnnounce(w http.ResponseWriter, r *http.Request, wiz *announce.Wizard, visitor string) {
	res, err := wiz.Submit(r.Context())
	if err != nil {
		slog.InfoContext(r.Context(), "announce submit failed", "error", err)
		s.redirectWithFlash(w, r, r.URL.Path, session.FlashError, wizardMessage(err))
		return
	}
	s.drafts.Discard(visitor)

	msg := fmt.Sprintf("Annonce n°%d publiée avec succès !", res.ID)
	if !res.Created {
		msg = fmt.Sprintf("Annonce n°%d mise à jour.", res.ID)
	}
	if n := len(res.FailedUploads); n > 0 {
		msg += fmt.Sprintf(" %d photo(s) n'ont pas pu être envoyées.", n)
	}
	s.redirectWithFlash(w, r, "/", session.FlashSuccess, msg)
}

// applyStepForm saves the fields of the step the form was rendered for.
// Forms of an older step are ignored.
func applyStepForm(r *http.Request, wiz *announce.Wizard) error {
	d := wiz.Draft()
	if r.PostFormValue("step") != d.Step.String() {
		return nil
	}
	details := d.Details

	switch d.Step {
	case announce.StepCondition:
		checks := announce.NewChecklist()
		for _, v := range r.PostForm["check"] {
			cat, key, ok := strings.Cut(v, ".")
			if !ok {
				return announce.ErrUnknownCheck
			}
			if err := checks.Set(announce.Category(cat), key, true); err != nil {
				return err
			}
		}
		if err := wiz.SetChecklist(checks); err != nil {
			return err
		}
		details.MarketPrice = parsePrice(r.PostFormValue("market_price"))
		details.Category = r.PostFormValue("category")
	case announce.StepPhotos:
		details.Description = r.PostFormValue("description")
		details.Location = r.PostFormValue("location")
	default:
		return nil
	}
	wiz.SetDetails(details)
	return nil
}

func (s *Server) applyManual(r *http.Request, wiz *announce.Wizard) error {
	info := announce.BookInfo{
		ISBN:          strings.TrimSpace(r.PostFormValue("isbn")),
		Title:         strings.TrimSpace(r.PostFormValue("title")),
		Authors:       splitComma(r.PostFormValue("authors")),
		Publisher:     strings.TrimSpace(r.PostFormValue("publisher")),
		PublishedDate: strings.TrimSpace(r.PostFormValue("published_date")),
	}
	if info.Title == "" {
		return announce.ErrNoIdentity
	}
	if n, err := strconv.Atoi(r.PostFormValue("page_count")); err == nil && n > 0 {
		info.PageCount = n
	}
	category := strings.TrimSpace(r.PostFormValue("category"))
	if category != "" {
		info.Categories = []string{category}
	}

	var cover *announce.Photo
	if files := formFiles(r, "cover"); len(files) > 0 {
		p, err := readPhoto(files[0])
		if err != nil {
			return err
		}
		cover = &p
	}
	if err := wiz.SetManual(info, cover); err != nil {
		return err
	}
	if category != "" {
		d := wiz.Draft().Details
		d.Category = category
		wiz.SetDetails(d)
	}
	return nil
}

func addPhotos(r *http.Request, wiz *announce.Wizard) error {
	files := formFiles(r, "photos")
	if len(files) == 0 {
		return announce.ErrNoPhotos
	}
	for _, fh := range files {
		p, err := readPhoto(fh)
		if err != nil {
			return err
		}
		if err := wiz.AddPhoto(p.Name, p.Data); err != nil {
			return err
		}
	}
	return nil
}

func formFiles(r *http.Request, field string) []*multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	var out []*multipart.FileHeader
	for _, fh := range r.MultipartForm.File[field] {
		if fh.Size > 0 {
			out = append(out, fh)
		}
	}
	return out
}

func readPhoto(fh *multipart.FileHeader) (announce.Photo, error) {
	f, err := fh.Open()
	if err != nil {
		return announce.Photo{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxPhotoBytes+1))
	if err != nil {
		return announce.Photo{}, err
	}
	if len(data) > maxPhotoBytes {
		return announce.Photo{}, announce.ErrInvalidImage
	}
	return announce.Photo{Name: fh.Filename, Data: data}, nil
}

func parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(maxUploadMemory)
	}
	return r.ParseForm()
}

func parsePrice(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func splitComma(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func withCurrent(list []string, current string) []string {
	if current == "" {
		return list
	}
	for _, c := range list {
		if c == current {
			return list
		}
	}
	return append([]string{current}, list...)
}

func stepLinks(current announce.Step) []stepLink {
	labels := []struct {
		step  announce.Step
		label string
	}{
		{announce.StepIdentify, "Identification"},
		{announce.StepCondition, "État du livre"},
		{announce.StepPhotos, "Photos et validation"},
	}
	out := make([]stepLink, 0, len(labels))
	for _, l := range labels {
		out = append(out, stepLink{Step: l.step, Label: l.label, Current: l.step == current, Done: l.step < current})
	}
	return out
}
