package main

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"udhaar/models"
	"udhaar/pkg/docscan"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// server wires the HTTP surface to the store. No ambient globals: every
// handler reaches state through this struct.
type server struct {
	cfg   *Config
	db    *gorm.DB
	store *Store
	log   *zap.Logger
}

func setupRoutes(r *gin.Engine, s *server) {
	r.GET("/healthz", s.healthHandler)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/register", s.registerHandler)
	r.POST("/login", s.loginHandler)
	r.POST("/refresh", s.refreshHandler)
	r.POST("/revoke_refresh", s.revokeRefreshHandler)

	authGroup := r.Group("")
	authGroup.Use(s.jwtAuthMiddleware())
	authGroup.GET("/me", s.meHandler)
	authGroup.POST("/profile", s.updateProfileHandler)
	authGroup.GET("/dashboard", s.dashboardHandler)
	authGroup.POST("/loans", s.applyLoanHandler)
	authGroup.GET("/loans", s.listOwnLoansHandler)
	authGroup.POST("/documents", s.uploadDocumentHandler)
	authGroup.GET("/documents", s.listOwnDocumentsHandler)

	admin := authGroup.Group("/admin")
	admin.Use(adminOnly())
	admin.GET("/loans", s.adminListLoansHandler)
	admin.PATCH("/loans/:id", s.adminDecideLoanHandler)
	admin.GET("/documents", s.adminListDocumentsHandler)
	admin.PATCH("/users/:userID/documents/:docID", s.adminDecideDocumentHandler)
}

// httpStatusFor maps store failures onto status codes.
func httpStatusFor(err error) int {
	switch {
	case errors.Is(err, ErrDuplicateKey):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *server) registerHandler(c *gin.Context) {
	var req struct {
		Phone    string `json:"phone" binding:"required"`
		CNIC     string `json:"cnic" binding:"required"`
		Password string `json:"password" binding:"required"`
		Income   int64  `json:"income"`
		Name     string `json:"name"`
		Email    string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Income < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "income must be non-negative"})
		return
	}
	user, err := s.store.CreateUser(NewUserParams{
		Phone:         req.Phone,
		CNIC:          req.CNIC,
		Name:          req.Name,
		Email:         req.Email,
		MonthlyIncome: req.Income,
		Secret:        req.Password,
	})
	if err != nil {
		status := httpStatusFor(err)
		if status == http.StatusInternalServerError && !errors.Is(err, ErrDuplicateKey) {
			// weak password and similar validation failures
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user registered successfully", "user": user})
}

func (s *server) loginHandler(c *gin.Context) {
	var req struct {
		Login    string `json:"login" binding:"required"` // phone or name
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := s.store.Authenticate(req.Login, req.Password)
	if err != nil {
		c.JSON(httpStatusFor(err), gin.H{"error": err.Error()})
		return
	}
	token, err := s.issueAccessToken(user, s.cfg.AccessTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	refreshToken, err := s.createAndStoreRefreshToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "login successful", "token": token, "refresh_token": refreshToken, "user": user})
}

// refreshHandler exchanges a refresh token for a new access token and rotates the refresh token
func (s *server) refreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rt, err := s.findRefreshTokenByRaw(req.RefreshToken)
	if err != nil || rt.Revoked || time.Now().After(rt.ExpiresAt) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired refresh token"})
		return
	}
	user, err := s.store.GetUser(rt.UserID)
	if err != nil || user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	token, err := s.issueAccessToken(user, 15*time.Minute)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	// rotate: revoke the presented token, hand out a fresh one
	s.db.Model(&models.RefreshToken{}).Where("id = ?", rt.ID).Update("revoked", true)
	newRT, err := s.createAndStoreRefreshToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to rotate refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "refresh_token": newRT})
}

// revokeRefreshHandler revokes a given refresh token (useful on logout)
func (s *server) revokeRefreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rt, err := s.findRefreshTokenByRaw(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "refresh token not found"})
		return
	}
	rt.Revoked = true
	if err := s.db.Save(rt).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "refresh token revoked"})
}

// currentUser loads the authenticated user from the id stashed by the JWT
// middleware.
func (s *server) currentUser(c *gin.Context) (*models.User, bool) {
	idVal, _ := c.Get("user_id")
	id, ok := idVal.(uint)
	if !ok || id == 0 {
		return nil, false
	}
	user, err := s.store.GetUser(id)
	if err != nil || user == nil {
		return nil, false
	}
	return user, true
}

func (s *server) meHandler(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *server) updateProfileHandler(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		Name          *string `json:"name"`
		Email         *string `json:"email"`
		Income        *int64  `json:"income"`
		Dependents    *int    `json:"dependents"`
		HouseholdType *string `json:"household_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Income != nil && *req.Income < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "income must be non-negative"})
		return
	}
	if req.Dependents != nil && *req.Dependents < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dependents must be non-negative"})
		return
	}
	if req.HouseholdType != nil {
		switch *req.HouseholdType {
		case models.HouseholdOwned, models.HouseholdRented, models.HouseholdFamily:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "household_type must be owned, rented or family"})
			return
		}
	}
	updated, err := s.store.UpdateProfile(user.ID, ProfileUpdate{
		Name:          req.Name,
		Email:         req.Email,
		MonthlyIncome: req.Income,
		Dependents:    req.Dependents,
		HouseholdType: req.HouseholdType,
	})
	if err != nil {
		c.JSON(httpStatusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *server) dashboardHandler(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	txns, err := s.store.Transactions(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	acts, err := s.store.Activities(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	loans, err := s.store.LoansForUser(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":         user,
		"transactions": txns,
		"activities":   acts,
		"loans":        loans,
	})
}

func (s *server) applyLoanHandler(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		Amount   int64  `json:"amount" binding:"required"`
		Document string `json:"document"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		return
	}
	loan, err := s.store.CreateLoan(user.ID, req.Amount, req.Document)
	if err != nil {
		c.JSON(httpStatusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, loan)
}

func (s *server) listOwnLoansHandler(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	loans, err := s.store.LoansForUser(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, loans)
}

var allowedDocumentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

// uploadDocumentHandler accepts a multipart verification document, stores it
// under the upload base with a collision-free name, and for images runs the
// income scanner so reviewers see the extracted figure next to the declared
// one.
func (s *server) uploadDocumentHandler(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file missing"})
		return
	}
	if file.Size > 5*1024*1024 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large (max 5MB)"})
		return
	}
	ct := file.Header.Get("Content-Type")
	if !allowedDocumentTypes[ct] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported file type (pdf, jpeg or png)"})
		return
	}

	relPath := filepath.Join("docs", uuid.New().String()+strings.ToLower(filepath.Ext(file.Filename)))
	fullPath := filepath.Join(s.cfg.UploadBase, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "mkdir failed"})
		return
	}
	if err := c.SaveUploadedFile(file, fullPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	doc := models.Document{
		Name:        file.Filename,
		ContentType: ct,
		Status:      models.DocPending,
		StorePath:   relPath,
	}
	if strings.HasPrefix(ct, "image/") {
		if amt, conf, _, err := docscan.ExtractIncomeFromImage(fullPath); err == nil && amt > 0 {
			doc.ScannedIncome = &amt
			doc.ScanConfidence = conf
			if user.MonthlyIncome > 0 && mismatch(amt, user.MonthlyIncome) {
				s.log.Warn("scanned income differs from declared",
					zap.Uint("user_id", user.ID),
					zap.Int64("declared", user.MonthlyIncome),
					zap.Int64("scanned", amt))
			}
		}
		thumbRel := relPath + ".thumb.png"
		if err := docscan.Thumbnail(fullPath, filepath.Join(s.cfg.UploadBase, thumbRel)); err == nil {
			doc.ThumbPath = thumbRel
		}
	}
	if err := s.store.AddDocument(user.ID, &doc); err != nil {
		c.JSON(httpStatusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, doc)
}

// mismatch reports whether the scanned figure is more than 25% away from
// the declared income.
func mismatch(scanned, declared int64) bool {
	diff := scanned - declared
	if diff < 0 {
		diff = -diff
	}
	return diff*4 > declared
}

func (s *server) listOwnDocumentsHandler(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	docs, err := s.store.DocumentsForUser(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, docs)
}
