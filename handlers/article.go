package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/microgestion/gestion-api/middleware"
	"github.com/microgestion/gestion-api/models"
)

type ArticleHandler struct {
	DB *sql.DB
}

func (h *ArticleHandler) ListArticles(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	rows, err := h.DB.Query(`
		SELECT id, user_id, name, COALESCE(description, ''), unit_price_ht, tva_rate,
		       COALESCE(options, '[]'), active, created_at, updated_at
		FROM articles
		WHERE user_id = $1
		ORDER BY name
	`, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch articles"})
		return
	}
	defer rows.Close()

	articles := []models.Article{}
	for rows.Next() {
		var article models.Article
		if err := rows.Scan(
			&article.ID, &article.UserID, &article.Name, &article.Description,
			&article.UnitPriceHt, &article.TVARate, &article.Options, &article.Active,
			&article.CreatedAt, &article.UpdatedAt,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan article"})
			return
		}
		articles = append(articles, article)
	}

	c.JSON(http.StatusOK, articles)
}

func (h *ArticleHandler) GetArticle(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, ok := idParam(c)
	if !ok {
		return
	}

	var article models.Article
	err := h.DB.QueryRow(`
		SELECT id, user_id, name, COALESCE(description, ''), unit_price_ht, tva_rate,
		       COALESCE(options, '[]'), active, created_at, updated_at
		FROM articles
		WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(
		&article.ID, &article.UserID, &article.Name, &article.Description,
		&article.UnitPriceHt, &article.TVARate, &article.Options, &article.Active,
		&article.CreatedAt, &article.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, article)
}

func (h *ArticleHandler) CreateArticle(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Valide la forme des options avant de les stocker
	if _, err := models.ParseOptions(req.Options); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	options := req.Options
	if len(options) == 0 {
		options = []byte("[]")
	}

	var articleID string
	err := h.DB.QueryRow(`
		INSERT INTO articles (user_id, name, description, unit_price_ht, tva_rate, options)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, userID, req.Name, req.Description, req.UnitPriceHt, req.TVARate, []byte(options)).Scan(&articleID)

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create article"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": articleID})
}

func (h *ArticleHandler) UpdateArticle(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, ok := idParam(c)
	if !ok {
		return
	}

	var req models.CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := models.ParseOptions(req.Options); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	options := req.Options
	if len(options) == 0 {
		options = []byte("[]")
	}

	result, err := h.DB.Exec(`
		UPDATE articles
		SET name = $1, description = $2, unit_price_ht = $3, tva_rate = $4, options = $5, updated_at = NOW()
		WHERE id = $6 AND user_id = $7
	`, req.Name, req.Description, req.UnitPriceHt, req.TVARate, []byte(options), id, userID)

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update article"})
		return
	}

	if rows, _ := result.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Article updated"})
}

func (h *ArticleHandler) DeleteArticle(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, ok := idParam(c)
	if !ok {
		return
	}

	// Désactivation plutôt que suppression : l'article peut être référencé
	// par des ventes ou devis existants
	result, err := h.DB.Exec(`
		UPDATE articles SET active = FALSE, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`, id, userID)

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete article"})
		return
	}

	if rows, _ := result.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Article archived"})
}
