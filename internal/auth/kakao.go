package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/answjddnjs04/errand-app/internal/models"
	"github.com/answjddnjs04/errand-app/internal/repositories"
)

const (
	kakaoAuthorizeURL = "https://kauth.kakao.com/oauth/authorize"
	kakaoTokenURL     = "https://kauth.kakao.com/oauth/token"
	kakaoProfileURL   = "https://kapi.kakao.com/v2/user/me"

	// shown when the provider returns no nickname
	fallbackNickname = "사용자"
)

// Config carries the OAuth client credentials and cookie settings.
type Config struct {
	ClientID      string
	ClientSecret  string
	RedirectURL   string
	CookieName    string
	SessionTTL    time.Duration
	SecureCookies bool
}

// Handler implements the Kakao OAuth login flow and session issuance.
// The rest of the service only ever sees the session-resolved user id.
type Handler struct {
	cfg      Config
	users    repositories.UserRepository
	sessions repositories.SessionRepository
	client   *http.Client
	logger   *slog.Logger
}

// NewHandler builds an auth Handler.
func NewHandler(cfg Config, users repositories.UserRepository, sessions repositories.SessionRepository, logger *slog.Logger) *Handler {
	return &Handler{
		cfg:      cfg,
		users:    users,
		sessions: sessions,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
	}
}

// Login redirects the browser to the Kakao consent screen.
// GET /api/login
func (h *Handler) Login(c *gin.Context) {
	q := url.Values{}
	q.Set("client_id", h.cfg.ClientID)
	q.Set("redirect_uri", h.redirectURL(c))
	q.Set("response_type", "code")
	q.Set("scope", "profile_nickname")

	c.Redirect(http.StatusFound, kakaoAuthorizeURL+"?"+q.Encode())
}

// Callback exchanges the authorization code, upserts the user and starts a
// session.
// GET /api/auth/kakao/callback
func (h *Handler) Callback(c *gin.Context) {
	if providerErr := c.Query("error"); providerErr != "" {
		h.logger.Warn("kakao oauth rejected", "error", providerErr, "description", c.Query("error_description"))
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Kakao login failed"})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing authorization code"})
		return
	}

	token, err := h.exchangeCode(c.Request.Context(), code, h.redirectURL(c))
	if err != nil {
		h.logger.Error("kakao token exchange failed", "error", err)
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Kakao login failed"})
		return
	}

	profile, err := h.fetchProfile(c.Request.Context(), token)
	if err != nil {
		h.logger.Error("kakao profile fetch failed", "error", err)
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Kakao login failed"})
		return
	}

	user, err := h.users.UpsertUser(c.Request.Context(), profile.toUpsert())
	if err != nil {
		h.logger.Error("user upsert failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Login failed"})
		return
	}

	sessionID := uuid.NewString()
	expiresAt := time.Now().Add(h.cfg.SessionTTL)
	if _, err := h.sessions.CreateSession(c.Request.Context(), sessionID, user.ID, expiresAt); err != nil {
		h.logger.Error("session create failed", "error", err, "user_id", user.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Login failed"})
		return
	}

	c.SetCookie(h.cfg.CookieName, sessionID, int(h.cfg.SessionTTL.Seconds()), "/", "", h.cfg.SecureCookies, true)
	c.Redirect(http.StatusFound, "/")
}

// Logout deletes the caller's session and clears the cookie.
// GET /api/logout
func (h *Handler) Logout(c *gin.Context) {
	if sid, err := c.Cookie(h.cfg.CookieName); err == nil && sid != "" {
		if err := h.sessions.DeleteSession(c.Request.Context(), sid); err != nil {
			h.logger.Error("session delete failed", "error", err)
		}
	}

	c.SetCookie(h.cfg.CookieName, "", -1, "/", "", h.cfg.SecureCookies, true)
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) redirectURL(c *gin.Context) string {
	if h.cfg.RedirectURL != "" {
		return h.cfg.RedirectURL
	}
	scheme := "https"
	if c.Request.TLS == nil && !strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https") {
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s/api/auth/kakao/callback", scheme, c.Request.Host)
}

func (h *Handler) exchangeCode(ctx context.Context, code, redirectURI string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", h.cfg.ClientID)
	form.Set("client_secret", h.cfg.ClientSecret)
	form.Set("redirect_uri", redirectURI)
	form.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, kakaoTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned %d", resp.StatusCode)
	}

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", err
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned no access token")
	}
	return token.AccessToken, nil
}

type kakaoProfile struct {
	ID         int64 `json:"id"`
	Properties struct {
		Nickname     string `json:"nickname"`
		ProfileImage string `json:"profile_image"`
	} `json:"properties"`
	KakaoAccount struct {
		Email   *string `json:"email"`
		Profile struct {
			Nickname        string `json:"nickname"`
			ProfileImageURL string `json:"profile_image_url"`
		} `json:"profile"`
	} `json:"kakao_account"`
}

func (p kakaoProfile) toUpsert() models.UpsertUser {
	nickname := p.Properties.Nickname
	if nickname == "" {
		nickname = p.KakaoAccount.Profile.Nickname
	}
	if nickname == "" {
		nickname = fallbackNickname
	}

	var image *string
	if p.Properties.ProfileImage != "" {
		image = &p.Properties.ProfileImage
	} else if p.KakaoAccount.Profile.ProfileImageURL != "" {
		image = &p.KakaoAccount.Profile.ProfileImageURL
	}

	return models.UpsertUser{
		ID:              strconv.FormatInt(p.ID, 10),
		Email:           p.KakaoAccount.Email,
		FirstName:       &nickname,
		ProfileImageURL: image,
	}
}

func (h *Handler) fetchProfile(ctx context.Context, accessToken string) (kakaoProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, kakaoProfileURL, nil)
	if err != nil {
		return kakaoProfile{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := h.client.Do(req)
	if err != nil {
		return kakaoProfile{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return kakaoProfile{}, fmt.Errorf("profile endpoint returned %d", resp.StatusCode)
	}

	var profile kakaoProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return kakaoProfile{}, err
	}
	if profile.ID == 0 {
		return kakaoProfile{}, fmt.Errorf("profile endpoint returned no user id")
	}
	return profile, nil
}
