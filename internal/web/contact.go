package web

import (
	"log/slog"
	"net/http"
	"strings"

	"dzkitab/internal/book"
	"dzkitab/internal/platform/apiclient"
	"dzkitab/internal/session"
)

type contactForm struct {
	Email   string `form:"email"`
	Address string `form:"address" validate:"required,max=200"`
	Phone   string `form:"phone" validate:"required,dz_phone"`
	Message string `form:"message" validate:"max=1000"`
}

type contactData struct {
	Book   book.Book
	Form   contactForm
	Errors map[string]string
	Error  string
}

func (s *Server) contactSeller(w http.ResponseWriter, r *http.Request) {
	b, ok := s.lookupBook(w, r)
	if !ok {
		return
	}
	cred, _ := session.CredentialFrom(r.Context())
	data := contactData{Book: b, Form: contactForm{Email: cred.User.Email}}

	if r.Method != http.MethodPost {
		s.render(w, r, http.StatusOK, "contact.html", "Contacter le vendeur", data)
		return
	}

	data.Form.Address = strings.TrimSpace(r.PostFormValue("address"))
	data.Form.Phone = strings.TrimSpace(r.PostFormValue("phone"))
	data.Form.Message = strings.TrimSpace(r.PostFormValue("message"))
	if errs := ValidateStruct(data.Form); errs != nil {
		data.Errors = fieldErrors(errs)
		s.render(w, r, http.StatusUnprocessableEntity, "contact.html", "Contacter le vendeur", data)
		return
	}

	announcementID, err := b.AnnouncementID()
	if err != nil {
		slog.ErrorContext(r.Context(), "book has no announcement", "book_id", b.ID, "error", err)
		s.notFound(w, r)
		return
	}
	err = s.api.ContactSeller(r.Context(), apiclient.ContactRequest{
		AnnouncementID: announcementID,
		Title:          b.Title,
		Email:          data.Form.Email,
		Address:        data.Form.Address,
		Phone:          data.Form.Phone,
		Message:        data.Form.Message,
	})
	if err != nil {
		data.Error = errorMessage(err)
		s.render(w, r, backendStatus(err), "contact.html", "Contacter le vendeur", data)
		return
	}

	s.redirectWithFlash(w, r, "/book/"+b.ID, session.FlashSuccess, "Votre message a été envoyé au vendeur.")
}
