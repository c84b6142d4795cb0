package web

import (
	"log/slog"
	"net/http"
	"strings"

	"dzkitab/internal/platform/apiclient"
	"dzkitab/internal/session"
)

type loginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

type registerForm struct {
	Username   string `form:"username" validate:"required,min=3,max=50"`
	FirstName  string `form:"first_name" validate:"required,max=100"`
	LastName   string `form:"last_name" validate:"required,max=100"`
	Email      string `form:"email" validate:"required,email"`
	University string `form:"university" validate:"max=200"`
	Phone      string `form:"phone_number" validate:"omitempty,dz_phone"`
	Password   string `form:"password" validate:"required,min=8"`
}

type formData[T any] struct {
	Form   T
	Errors map[string]string
	Error  string
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.render(w, r, http.StatusOK, "login.html", "Connexion", formData[loginForm]{})
		return
	}

	form := loginForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	if errs := ValidateStruct(form); errs != nil {
		form.Password = ""
		s.render(w, r, http.StatusUnprocessableEntity, "login.html", "Connexion", formData[loginForm]{Form: form, Errors: fieldErrors(errs)})
		return
	}

	res, err := s.api.Login(r.Context(), apiclient.LoginRequest{Email: form.Email, Password: form.Password})
	if err == nil {
		err = s.sessions.SetCredential(w, res)
	}
	if err != nil {
		slog.InfoContext(r.Context(), "login failed", "email", form.Email, "error", err)
		form.Password = ""
		s.render(w, r, backendStatus(err), "login.html", "Connexion", formData[loginForm]{Form: form, Error: errorMessage(err)})
		return
	}

	s.redirectWithFlash(w, r, "/", session.FlashSuccess, "Bienvenue "+res.User.DisplayName()+" !")
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.render(w, r, http.StatusOK, "register.html", "Inscription", formData[registerForm]{})
		return
	}

	form := registerForm{
		Username:   strings.TrimSpace(r.PostFormValue("username")),
		FirstName:  strings.TrimSpace(r.PostFormValue("first_name")),
		LastName:   strings.TrimSpace(r.PostFormValue("last_name")),
		Email:      strings.TrimSpace(r.PostFormValue("email")),
		University: strings.TrimSpace(r.PostFormValue("university")),
		Phone:      strings.TrimSpace(r.PostFormValue("phone_number")),
		Password:   r.PostFormValue("password"),
	}
	if errs := ValidateStruct(form); errs != nil {
		form.Password = ""
		s.render(w, r, http.StatusUnprocessableEntity, "register.html", "Inscription", formData[registerForm]{Form: form, Errors: fieldErrors(errs)})
		return
	}

	err := s.api.Register(r.Context(), apiclient.RegisterRequest{
		Email:       form.Email,
		Username:    form.Username,
		Password:    form.Password,
		FirstName:   form.FirstName,
		LastName:    form.LastName,
		University:  form.University,
		PhoneNumber: form.Phone,
	})
	if err != nil {
		form.Password = ""
		s.render(w, r, backendStatus(err), "register.html", "Inscription", formData[registerForm]{Form: form, Error: errorMessage(err)})
		return
	}

	s.redirectWithFlash(w, r, "/login", session.FlashSuccess, "Compte créé avec succès. Vous pouvez vous connecter.")
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.sessions.ClearCredential(w)
	s.redirectWithFlash(w, r, "/", session.FlashInfo, "Vous êtes déconnecté.")
}
