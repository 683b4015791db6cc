// Package handlers implements the demo Users API. Every piece of raw query
// or body input crosses the validation layer before it can reach the
// database.
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	dbutil "github.com/demostack/usersapi/internal/db"
	"github.com/demostack/usersapi/internal/models"
	"github.com/demostack/usersapi/internal/sanitize"
	"github.com/demostack/usersapi/internal/schema"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// listUsersQuery validates the list endpoint's query string. The search term
// is neutralized before it participates in a LIKE pattern.
var listUsersQuery = schema.MustRecord(
	schema.Field{Name: "page", Kind: schema.KindNumber, Integer: true, Min: schema.Ptr(1), Max: schema.Ptr(1000000), Default: float64(1)},
	schema.Field{Name: "per_page", Kind: schema.KindNumber, Integer: true, Min: schema.Ptr(1), Max: schema.Ptr(100), Default: float64(10)},
	schema.Field{Name: "search", Kind: schema.KindString, MaxLen: 100, Transform: sanitize.SearchTerm},
	schema.Field{Name: "role", Kind: schema.KindEnum, Allowed: []string{models.RoleAdmin, models.RoleUser, models.RoleManager}},
)

// createUserBody validates user creation payloads.
var createUserBody = schema.MustRecord(
	schema.Field{Name: "name", Kind: schema.KindString, Required: true, MinLen: 1, MaxLen: 100, Transform: sanitize.PlainText},
	schema.Field{Name: "email", Kind: schema.KindString, Required: true, MinLen: 1, MaxLen: 100, Format: schema.EmailFormat, Transform: sanitize.PlainText},
	schema.Field{Name: "role", Kind: schema.KindEnum, Allowed: []string{models.RoleAdmin, models.RoleUser, models.RoleManager}, Default: models.RoleUser},
	schema.Field{Name: "bio", Kind: schema.KindString, MaxLen: 500, Transform: sanitize.Markup},
)

// updateUserBody validates partial user updates; every field is optional.
var updateUserBody = schema.MustRecord(
	schema.Field{Name: "name", Kind: schema.KindString, MinLen: 1, MaxLen: 100, Transform: sanitize.PlainText},
	schema.Field{Name: "email", Kind: schema.KindString, MinLen: 1, MaxLen: 100, Format: schema.EmailFormat, Transform: sanitize.PlainText},
	schema.Field{Name: "role", Kind: schema.KindEnum, Allowed: []string{models.RoleAdmin, models.RoleUser, models.RoleManager}},
	schema.Field{Name: "bio", Kind: schema.KindString, MaxLen: 500, Transform: sanitize.Markup},
)

// UserHandler manages user account endpoints.
type UserHandler struct {
	db *gorm.DB
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// List returns users with pagination, search, and role filtering.
func (h *UserHandler) List(c *gin.Context) {
	query, errsValidate := listUsersQuery.Validate(queryInput(c, "page", "per_page", "search", "role"))
	if errsValidate != nil {
		respondValidationError(c, errsValidate)
		return
	}
	page := int(query["page"].(float64))
	perPage := int(query["per_page"].(float64))

	ctx := c.Request.Context()
	filtered := func() *gorm.DB {
		q := h.db.WithContext(ctx).Model(&models.User{})
		if search, ok := query["search"].(string); ok && search != "" {
			pattern := dbutil.NormalizeLikePattern(h.db, "%"+search+"%")
			q = q.Where(
				dbutil.CaseInsensitiveLikeExpr(h.db, "name")+" OR "+dbutil.CaseInsensitiveLikeExpr(h.db, "email"),
				pattern,
				pattern,
			)
		}
		if role, ok := query["role"].(string); ok {
			q = q.Where("role = ?", role)
		}
		return q
	}

	var total int64
	if errCount := filtered().Count(&total).Error; errCount != nil {
		log.WithError(errCount).Error("count users failed")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}

	var rows []models.User
	offset := (page - 1) * perPage
	if errFind := filtered().Order("id").Offset(offset).Limit(perPage).Find(&rows).Error; errFind != nil {
		log.WithError(errFind).Error("list users failed")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}

	totalPages := (int(total) + perPage - 1) / perPage
	c.JSON(http.StatusOK, gin.H{
		"users":       rows,
		"total":       total,
		"page":        page,
		"per_page":    perPage,
		"total_pages": totalPages,
	})
}

// Get returns a user by ID.
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var user models.User
	if errFind := h.db.WithContext(c.Request.Context()).First(&user, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "User not found"})
			return
		}
		log.WithError(errFind).Error("query user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// Create creates a new user account.
func (h *UserHandler) Create(c *gin.Context) {
	raw, ok := jsonInput(c)
	if !ok {
		return
	}
	body, errsValidate := createUserBody.Validate(raw)
	if errsValidate != nil {
		respondValidationError(c, errsValidate)
		return
	}

	ctx := c.Request.Context()
	email := body["email"].(string)
	var existing int64
	if errCount := h.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; errCount != nil {
		log.WithError(errCount).Error("check email failed")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}
	if existing > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Email already registered"})
		return
	}

	user := models.User{
		Name:  body["name"].(string),
		Email: email,
		Role:  body["role"].(string),
	}
	if bio, present := body["bio"].(string); present {
		user.Bio = bio
	}
	if errCreate := h.db.WithContext(ctx).Create(&user).Error; errCreate != nil {
		log.WithError(errCreate).Error("create user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Update modifies the provided fields of a user account.
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	raw, ok := jsonInput(c)
	if !ok {
		return
	}
	body, errsValidate := updateUserBody.Validate(raw)
	if errsValidate != nil {
		respondValidationError(c, errsValidate)
		return
	}

	ctx := c.Request.Context()
	var user models.User
	if errFind := h.db.WithContext(ctx).First(&user, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "User not found"})
			return
		}
		log.WithError(errFind).Error("query user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}

	if email, present := body["email"].(string); present && email != user.Email {
		var existing int64
		if errCount := h.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; errCount != nil {
			log.WithError(errCount).Error("check email failed")
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
			return
		}
		if existing > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Email already registered"})
			return
		}
	}

	if len(body) > 0 {
		if errUpdate := h.db.WithContext(ctx).Model(&user).Updates(body).Error; errUpdate != nil {
			log.WithError(errUpdate).Error("update user failed")
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
			return
		}
		if errReload := h.db.WithContext(ctx).First(&user, id).Error; errReload != nil {
			log.WithError(errReload).Error("reload user failed")
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
			return
		}
	}
	c.JSON(http.StatusOK, user)
}

// Delete removes a user account.
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	res := h.db.WithContext(c.Request.Context()).Delete(&models.User{}, id)
	if res.Error != nil {
		log.WithError(res.Error).Error("delete user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// queryInput collects the named query parameters that are present.
func queryInput(c *gin.Context, names ...string) map[string]any {
	input := make(map[string]any, len(names))
	for _, name := range names {
		if value, present := c.GetQuery(name); present {
			input[name] = value
		}
	}
	return input
}

// jsonInput decodes the request body into an untyped map for validation.
func jsonInput(c *gin.Context) (map[string]any, bool) {
	var raw map[string]any
	if errBind := c.ShouldBindJSON(&raw); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid json"})
		return nil, false
	}
	return raw, true
}

// pathID parses the :id path parameter.
func pathID(c *gin.Context) (uint64, bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid id"})
		return 0, false
	}
	return id, true
}

// respondValidationError reports every failing field in one response.
func respondValidationError(c *gin.Context, errs *schema.Errors) {
	c.JSON(http.StatusBadRequest, gin.H{
		"detail": "Validation failed",
		"errors": errs.Fields,
	})
}
