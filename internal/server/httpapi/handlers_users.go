package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/avelins/cliptube/internal/common"
	"github.com/avelins/cliptube/internal/server/models"
	"github.com/avelins/cliptube/internal/server/services"
)

// handleRegister creates an account from a multipart form. The avatar file is
// required, the cover image is optional; both are uploaded before the account
// record is created.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, fmt.Errorf("%w: expected multipart form", common.ErrorBadRequest))
		return
	}

	params := services.RegisterParams{
		Username: r.FormValue("username"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
		FullName: r.FormValue("fullname"),
	}

	avatar, avatarHeader, err := r.FormFile("avatar")
	if err != nil {
		writeError(w, fmt.Errorf("%w: avatar file is required", common.ErrorBadRequest))
		return
	}
	defer avatar.Close()

	params.AvatarKey, params.AvatarURL, err = s.media.Upload(r.Context(),
		"users/avatars", avatarHeader.Filename, avatar, partContentType(avatarHeader))
	if err != nil {
		writeError(w, common.ErrorInternal)
		return
	}

	if cover, coverHeader, err := r.FormFile("coverImage"); err == nil {
		defer cover.Close()
		params.CoverKey, params.CoverURL, err = s.media.Upload(r.Context(),
			"users/covers", coverHeader.Filename, cover, partContentType(coverHeader))
		if err != nil {
			writeError(w, common.ErrorInternal)
			return
		}
	}

	user, err := s.users.Register(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, user, "user registered successfully")
}

func partContentType(h *multipart.FileHeader) string {
	if ct := h.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// handleLogin verifies credentials and mints a token pair. An unknown login
// and a wrong password produce the same response so that account existence
// cannot be probed here.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	login := req.Username
	if login == "" {
		login = req.Email
	}

	pair, user, err := s.users.Login(r.Context(), login, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrorUnauthorized) {
			writeJSON(w, http.StatusUnauthorized, apiResponse{
				StatusCode: http.StatusUnauthorized,
				Message:    "invalid user credentials",
			})
			return
		}
		writeError(w, err)
		return
	}

	s.setAuthCookies(w, pair)

	writeSuccess(w, http.StatusOK, map[string]any{
		"user":         user,
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}, "user logged in successfully")
}

// handleRefreshToken rotates the refresh token. The presented token comes
// from the refresh cookie or, failing that, the JSON body.
func (s *Server) handleRefreshToken(w http.ResponseWriter, r *http.Request) {

	var presented string
	if c, err := r.Cookie(common.RefreshTokenCookieName); err == nil {
		presented = c.Value
	}
	if presented == "" {
		var req struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := decodeJSON(r, &req); err == nil {
			presented = req.RefreshToken
		}
	}

	pair, err := s.users.Refresh(r.Context(), presented)
	if err != nil {
		writeError(w, err)
		return
	}

	s.setAuthCookies(w, pair)

	writeSuccess(w, http.StatusOK, map[string]any{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}, "access token refreshed")
}

// handleLogout revokes the refresh chain and clears the auth cookies.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {

	user := userFrom(r.Context())

	if err := s.users.Logout(r.Context(), user.ID); err != nil {
		writeError(w, err)
		return
	}

	s.clearAuthCookies(w)

	writeSuccess(w, http.StatusOK, nil, "user logged out")
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {

	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user := userFrom(r.Context())

	if err := s.users.ChangePassword(r.Context(), user.ID, req.OldPassword, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, nil, "password changed successfully")
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, userFrom(r.Context()), "current user fetched successfully")
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {

	var req struct {
		FullName string `json:"fullname"`
		Email    string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user := userFrom(r.Context())

	updated, err := s.users.UpdateProfile(r.Context(), user.ID, req.FullName, req.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, updated, "account details updated successfully")
}

func (s *Server) handleUpdateAvatar(w http.ResponseWriter, r *http.Request) {
	s.handleUpdateImage(w, r, "avatar", s.media.UpdateAvatar, "avatar updated successfully")
}

func (s *Server) handleUpdateCover(w http.ResponseWriter, r *http.Request) {
	s.handleUpdateImage(w, r, "coverImage", s.media.UpdateCover, "cover image updated successfully")
}

func (s *Server) handleUpdateImage(w http.ResponseWriter, r *http.Request, field string,
	update func(ctx context.Context, userID, filename string, body io.Reader, contentType string) (*models.PublicUser, error),
	message string) {

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, fmt.Errorf("%w: expected multipart form", common.ErrorBadRequest))
		return
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		writeError(w, fmt.Errorf("%w: %s file is required", common.ErrorBadRequest, field))
		return
	}
	defer file.Close()

	user := userFrom(r.Context())

	updated, err := update(r.Context(), user.ID, header.Filename, file, partContentType(header))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, updated, message)
}
