package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goodtune/kdict/internal/auth"
	"github.com/goodtune/kdict/internal/lookup"
	"github.com/goodtune/kdict/internal/session"
	"github.com/goodtune/kdict/internal/usage"
)

// maxWindow bounds the n and days query parameters
const maxWindow = 366

func (s *Server) handleHealth(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"active_sessions": s.sessions.Len(),
	})
}

func (s *Server) handleSignUp(ctx *gin.Context) {
	var creds auth.Credentials
	if err := ctx.ShouldBindJSON(&creds); err != nil {
		badRequest(ctx, "Invalid request body")
		return
	}

	account, token, err := s.auth.SignUp(ctx.Request.Context(), creds)
	if err != nil {
		s.authError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"token":   token,
		"account": account,
	})
}

func (s *Server) handleSignIn(ctx *gin.Context) {
	var creds auth.Credentials
	if err := ctx.ShouldBindJSON(&creds); err != nil {
		badRequest(ctx, "Invalid request body")
		return
	}

	account, token, err := s.auth.SignIn(ctx.Request.Context(), creds)
	if err != nil {
		s.authError(ctx, err)
		return
	}

	// A fresh sign-in reseeds the session from the remote store
	s.sessions.Drop(account.ID)

	ctx.JSON(http.StatusOK, gin.H{
		"token":   token,
		"account": account,
	})
}

func (s *Server) authError(ctx *gin.Context, err error) {
	var verr *auth.ValidationError

	switch {
	case errors.As(err, &verr):
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"message": "Please correct the highlighted fields",
			"fields":  verr.Errors,
		})
	case errors.Is(err, auth.ErrEmailInUse):
		ctx.JSON(http.StatusConflict, gin.H{
			"error":   "email_in_use",
			"message": "An account with this email already exists",
		})
	case errors.Is(err, auth.ErrInvalidCredentials):
		ctx.JSON(http.StatusUnauthorized, gin.H{
			"error":   "invalid_credentials",
			"message": "Invalid email or password",
		})
	default:
		s.logger.Error().Err(err).Msg("Account request failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Internal server error",
		})
	}
}

func (s *Server) handleMe(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"id":    ctx.GetString(ctxUserID),
		"email": ctx.GetString(ctxEmail),
	})
}

func (s *Server) handleSignOut(ctx *gin.Context) {
	s.sessions.Drop(ctx.GetString(ctxUserID))
	ctx.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

func (s *Server) session(ctx *gin.Context) *session.Session {
	return s.sessions.Get(ctx.Request.Context(), ctx.GetString(ctxUserID))
}

// handleLookup searches a query. With from=text the query is a token
// clicked inside a definition and is stripped to letters first.
func (s *Server) handleLookup(ctx *gin.Context) {
	sess := s.session(ctx)

	var (
		out session.Outcome
		err error
	)
	if ctx.Query("from") == "text" {
		out, err = sess.SearchFromText(ctx.Request.Context(), ctx.Query("q"))
	} else {
		out, err = sess.Search(ctx.Request.Context(), ctx.Query("q"))
	}

	switch {
	case errors.Is(err, session.ErrEmptyQuery):
		badRequest(ctx, "Query is required")
		return
	case errors.Is(err, lookup.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "Word not found",
			"term":    out.Term,
		})
		return
	case err != nil:
		s.logger.Error().Err(err).Msg("Lookup failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Internal server error",
		})
		return
	}

	resp := gin.H{
		"kind": out.Kind.String(),
		"term": out.Term,
	}
	if out.Kind == lookup.KindTranslate {
		resp["redirect_url"] = out.RedirectURL
		ctx.JSON(http.StatusOK, resp)
		return
	}

	resp["entry"] = out.Entry
	resp["stale"] = out.Stale
	resp["recorded"] = out.Recorded
	if out.PersistErr != nil {
		resp["warning"] = "Statistics could not be saved remotely"
	}

	ctx.JSON(http.StatusOK, resp)
}

func (s *Server) handleCurrent(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, s.session(ctx).Current())
}

func (s *Server) handleRedirects(ctx *gin.Context) {
	word := lookup.StripToLetters(ctx.Query("word"))
	if word == "" {
		badRequest(ctx, "Word is required")
		return
	}

	accent := ctx.Query("accent")
	switch accent {
	case "", "us", "uk":
	default:
		badRequest(ctx, "Accent must be us or uk")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"word":      word,
		"redirects": s.session(ctx).Redirects().All(word, accent),
	})
}

func (s *Server) handleTopWords(ctx *gin.Context) {
	n, ok := intParam(ctx, "n", s.config.TopWords)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"words": s.session(ctx).Tracker().TopN(n),
	})
}

func (s *Server) handleDailySeries(ctx *gin.Context) {
	days, ok := intParam(ctx, "days", s.config.SeriesDays)
	if !ok {
		return
	}

	tracker := s.session(ctx).Tracker()
	resp := gin.H{"days": days}

	// sessions are seeded with SeriesDays records; a longer series reads
	// the rest from the remote store
	if days > s.config.SeriesDays {
		if err := tracker.Refresh(ctx.Request.Context(), days); err != nil {
			s.logger.Warn().Err(err).Str("user_id", ctx.GetString(ctxUserID)).Int("days", days).Msg("Refresh failed")
			resp["warning"] = "Older statistics could not be read remotely"
		}
	}

	resp["series"] = tracker.DailySeries(days)
	ctx.JSON(http.StatusOK, resp)
}

func (s *Server) handleRefresh(ctx *gin.Context) {
	days, ok := intParam(ctx, "days", s.config.SeriesDays)
	if !ok {
		return
	}

	tracker := s.session(ctx).Tracker()
	if err := tracker.Refresh(ctx.Request.Context(), days); err != nil {
		s.logger.Warn().Err(err).Str("user_id", ctx.GetString(ctxUserID)).Msg("Refresh failed")
		ctx.JSON(http.StatusBadGateway, gin.H{
			"error":   "remote_unavailable",
			"message": "Statistics could not be refreshed",
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"days":   days,
		"series": tracker.DailySeries(days),
	})
}

func (s *Server) handleHistory(ctx *gin.Context) {
	tracker := s.session(ctx).Tracker()

	date := ctx.DefaultQuery("date", tracker.Today())
	if _, err := time.Parse(usage.DateLayout, date); err != nil {
		badRequest(ctx, "Date must be YYYY-MM-DD")
		return
	}

	words, err := tracker.DayWords(ctx.Request.Context(), date)
	resp := gin.H{
		"date":  date,
		"words": words,
	}
	if err != nil {
		resp["warning"] = "History could not be read remotely"
	}

	ctx.JSON(http.StatusOK, resp)
}

// intParam reads a positive integer query parameter; it writes the 400
// response itself and reports false on a bad value.
func intParam(ctx *gin.Context, name string, fallback int) (int, bool) {
	raw := ctx.Query(name)
	if raw == "" {
		return fallback, true
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > maxWindow {
		badRequest(ctx, "Parameter "+name+" must be between 1 and "+strconv.Itoa(maxWindow))
		return 0, false
	}

	return n, true
}

func badRequest(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusBadRequest, gin.H{
		"error":   "invalid_request",
		"message": message,
	})
}
