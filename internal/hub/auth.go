package hub

import (
	"context"
	"net/http"
	"strings"

	"github.com/sadopc/taskhub/internal/api"
	"github.com/sadopc/taskhub/internal/model"
	"github.com/sadopc/taskhub/internal/state"
	"github.com/sadopc/taskhub/internal/validate"
)

func (h *Hub) SignUp(ctx context.Context, form validate.SignUp) (model.User, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.Email = strings.TrimSpace(form.Email)
	if err := form.Validate(); err != nil {
		return model.User{}, h.report(Auth, "sign up", err)
	}
	u, err := h.svc.SignUp(ctx, api.SignUpRequest{
		Name:            form.Name,
		Email:           form.Email,
		Password:        form.Password,
		ConfirmPassword: form.ConfirmPassword,
	})
	if err != nil {
		return model.User{}, h.report(Auth, "sign up", err)
	}
	h.setUser(&u)
	h.notices[Auth].Success("Account created successfully")
	return u, nil
}

func (h *Hub) Login(ctx context.Context, form validate.Login) (model.User, error) {
	form.Email = strings.TrimSpace(form.Email)
	if err := form.Validate(); err != nil {
		return model.User{}, h.report(Auth, "log in", err)
	}
	u, err := h.svc.Login(ctx, api.LoginRequest{Email: form.Email, Password: form.Password})
	if err != nil {
		return model.User{}, h.report(Auth, "log in", err)
	}
	h.setUser(&u)
	h.notices[Auth].Success("Logged in successfully")
	return u, nil
}

// CheckSession asks the service who the stored cookie belongs to. It does
// not post a notice; a 401 just means nobody is signed in.
func (h *Hub) CheckSession(ctx context.Context) (model.User, error) {
	u, err := h.svc.CheckSession(ctx)
	if err != nil {
		if api.IsStatus(err, http.StatusUnauthorized) {
			h.setUser(nil)
		}
		return model.User{}, err
	}
	h.setUser(&u)
	return u, nil
}

// Logout ends the session and empties the board.
func (h *Hub) Logout(ctx context.Context) error {
	if err := h.svc.Logout(ctx); err != nil {
		return h.report(Auth, "log out", err)
	}
	h.mu.Lock()
	h.user = nil
	h.board = state.NewBoard()
	h.categoryInput = ""
	h.taskDraft = validate.Task{}
	h.mu.Unlock()
	return nil
}

func (h *Hub) setUser(u *model.User) {
	h.mu.Lock()
	h.user = u
	h.mu.Unlock()
}
