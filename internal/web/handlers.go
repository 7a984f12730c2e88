package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vindennt/quick-little-shop/internal/models"
	"github.com/vindennt/quick-little-shop/internal/validator"
	"github.com/vindennt/quick-little-shop/internal/views/home"
	"github.com/vindennt/quick-little-shop/internal/views/marketplace"
	"github.com/vindennt/quick-little-shop/internal/views/navbar"
	"github.com/vindennt/quick-little-shop/internal/views/sell"
)

// mountNavbar renders the bar for this request. "?auth=login|signup" opens
// the dialog and "?error=" carries a failed submit back into it.
func (s *Server) mountNavbar(r *http.Request) (navbar.Snapshot, error) {
	nb := navbar.New(s.sessions, browserID(r), s.log)
	if err := nb.Mount(r.Context()); err != nil {
		return navbar.Snapshot{}, err
	}
	defer nb.Unmount()

	q := r.URL.Query()
	if mode := q.Get("auth"); mode != "" {
		nb.OpenDialog(navbar.ParseMode(mode))
	}
	snap := nb.Snapshot()
	if snap.DialogOpen {
		snap.DialogError = q.Get("error")
	}
	return snap, nil
}

func (s *Server) page(w http.ResponseWriter, r *http.Request, status int, name string, data PageData) {
	data.View = name
	data.Next = withoutDialog(r.URL)
	data.LoginURL = withDialog(data.Next, navbar.ModeLogin, "")
	data.SignupURL = withDialog(data.Next, navbar.ModeSignup, "")
	if err := s.renderer.Page(w, status, name, data); err != nil {
		s.log.ErrorContext(r.Context(), "render page", "page", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.log.ErrorContext(r.Context(), "page failed", "path", r.URL.Path, "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (s *Server) homePage(w http.ResponseWriter, r *http.Request) {
	nav, err := s.mountNavbar(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	h := home.New(s.sessions, s.backend, browserID(r), s.log)
	if err := h.Mount(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	defer h.Unmount()
	h.Probe(r.Context())

	s.page(w, r, http.StatusOK, pageHome, PageData{Nav: nav, Home: h.Snapshot()})
}

func (s *Server) marketplacePage(w http.ResponseWriter, r *http.Request) {
	category, err := models.ParseCategoryFilter(r.URL.Query().Get("category"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	nav, err := s.mountNavbar(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	token := ""
	if current, err := s.sessions.Current(r.Context(), browserID(r)); err == nil && current != nil {
		token = current.AccessToken
	}

	m := marketplace.New(s.backend, token, s.log)
	m.Mount(r.Context(), category)

	s.page(w, r, http.StatusOK, pageMarketplace, PageData{Nav: nav, Market: m.Snapshot()})
}

func (s *Server) newSell(r *http.Request) *sell.Sell {
	return sell.New(sell.Deps{
		Sessions: s.sessions,
		Items:    s.backend,
		InFlight: s.inFlight,
		Delay:    s.cfg.SellRedirectDelay,
		Log:      s.log,
	}, browserID(r))
}

func newSellPage(form sell.Form) SellPage {
	return SellPage{
		Form:       form,
		Categories: models.Categories,
		Conditions: models.Conditions,
	}
}

func (s *Server) sellPage(w http.ResponseWriter, r *http.Request) {
	v := s.newSell(r)
	redirect, err := v.Mount(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if redirect != "" {
		http.Redirect(w, r, redirect, http.StatusFound)
		return
	}

	nav, err := s.mountNavbar(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	data := newSellPage(v.Form())
	data.Submitting = v.Submitting()
	s.page(w, r, http.StatusOK, pageSell, PageData{Nav: nav, Sell: data})
}

func (s *Server) sellSubmit(w http.ResponseWriter, r *http.Request) {
	v := s.newSell(r)
	redirect, err := v.Mount(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if redirect != "" {
		http.Redirect(w, r, redirect, http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := sell.Form{
		Title:       r.PostForm.Get("title"),
		Description: r.PostForm.Get("description"),
		Price:       r.PostForm.Get("price"),
		Category:    r.PostForm.Get("category"),
		Condition:   r.PostForm.Get("condition"),
		Location:    r.PostForm.Get("location"),
	}

	res, err := v.Submit(r.Context(), form)

	nav, navErr := s.mountNavbar(r)
	if navErr != nil {
		s.fail(w, r, navErr)
		return
	}

	data := newSellPage(res.Form)
	data.Message = res.Message
	data.Success = res.Success

	status := http.StatusOK
	switch {
	case err == nil:
		seconds := int(res.RedirectAfter.Round(time.Second) / time.Second)
		w.Header().Set("Refresh", strconv.Itoa(seconds)+"; url="+res.RedirectTo)
		status = http.StatusCreated
	case errors.Is(err, models.ErrSubmitInFlight):
		data.Message = "Your previous listing is still being posted."
		data.Submitting = true
		status = http.StatusConflict
	case errors.Is(err, models.ErrNotAuthenticated):
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	default:
		status = http.StatusUnprocessableEntity
	}

	s.page(w, r, status, pageSell, PageData{Nav: nav, Sell: data})
}

// safeNext keeps redirects on this site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

// withoutDialog returns u's path and query minus the dialog parameters.
func withoutDialog(u *url.URL) string {
	q := u.Query()
	q.Del("auth")
	q.Del("error")
	out := url.URL{Path: u.Path, RawQuery: q.Encode()}
	return out.String()
}

// withDialog adds the dialog parameters to next, keeping its own query.
func withDialog(next string, mode navbar.DialogMode, msg string) string {
	u, err := url.Parse(next)
	if err != nil {
		u = &url.URL{Path: "/"}
	}
	q := u.Query()
	q.Set("auth", string(mode))
	if msg != "" {
		q.Set("error", msg)
	} else {
		q.Del("error")
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func (s *Server) authSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	mode := navbar.ModeLogin
	if strings.HasSuffix(r.URL.Path, "/signup") {
		mode = navbar.ModeSignup
	}
	next := safeNext(r.PostForm.Get("next"))
	creds := models.Credentials{
		Email:    strings.TrimSpace(r.PostForm.Get("email")),
		Password: r.PostForm.Get("password"),
		FullName: strings.TrimSpace(r.PostForm.Get("full_name")),
	}

	back := func(msg string) {
		http.Redirect(w, r, withDialog(next, mode, msg), http.StatusSeeOther)
	}

	if err := validator.Validate(&creds); err != nil {
		back(validator.Summary(err))
		return
	}

	nb := navbar.New(s.sessions, browserID(r), s.log)
	if err := nb.Mount(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	defer nb.Unmount()

	nb.OpenDialog(mode)
	if err := nb.Submit(r.Context(), creds); err != nil {
		back(err.Error())
		return
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (s *Server) signOut(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	next := safeNext(r.PostForm.Get("next"))

	nb := navbar.New(s.sessions, browserID(r), s.log)
	if err := nb.Mount(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	defer nb.Unmount()

	// The local session is gone even when the backend call fails
	if err := nb.SignOut(r.Context()); err != nil {
		s.log.WarnContext(r.Context(), "sign out", "error", err)
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}
