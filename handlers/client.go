package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/microgestion/gestion-api/middleware"
	"github.com/microgestion/gestion-api/models"
)

type ClientHandler struct {
	DB *sql.DB
}

func (h *ClientHandler) ListClients(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	rows, err := h.DB.Query(`
		SELECT id, user_id, name, COALESCE(contact_name, ''), COALESCE(email, ''),
		       COALESCE(phone, ''), COALESCE(address, ''), COALESCE(postal_code, ''),
		       COALESCE(city, ''), COALESCE(notes, ''), created_at, updated_at
		FROM clients
		WHERE user_id = $1
		ORDER BY name
	`, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch clients"})
		return
	}
	defer rows.Close()

	clients := []models.Client{}
	for rows.Next() {
		var client models.Client
		if err := rows.Scan(
			&client.ID, &client.UserID, &client.Name, &client.ContactName, &client.Email,
			&client.Phone, &client.Address, &client.PostalCode, &client.City, &client.Notes,
			&client.CreatedAt, &client.UpdatedAt,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan client"})
			return
		}
		clients = append(clients, client)
	}

	c.JSON(http.StatusOK, clients)
}

func (h *ClientHandler) GetClient(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, ok := idParam(c)
	if !ok {
		return
	}

	var client models.Client
	err := h.DB.QueryRow(`
		SELECT id, user_id, name, COALESCE(contact_name, ''), COALESCE(email, ''),
		       COALESCE(phone, ''), COALESCE(address, ''), COALESCE(postal_code, ''),
		       COALESCE(city, ''), COALESCE(notes, ''), created_at, updated_at
		FROM clients
		WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(
		&client.ID, &client.UserID, &client.Name, &client.ContactName, &client.Email,
		&client.Phone, &client.Address, &client.PostalCode, &client.City, &client.Notes,
		&client.CreatedAt, &client.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, client)
}

func (h *ClientHandler) CreateClient(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var clientID string
	err := h.DB.QueryRow(`
		INSERT INTO clients (user_id, name, contact_name, email, phone, address, postal_code, city, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, userID, req.Name, req.ContactName, req.Email, req.Phone, req.Address, req.PostalCode, req.City, req.Notes).Scan(&clientID)

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create client"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": clientID})
}

func (h *ClientHandler) UpdateClient(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, ok := idParam(c)
	if !ok {
		return
	}

	var req models.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.DB.Exec(`
		UPDATE clients
		SET name = $1, contact_name = $2, email = $3, phone = $4, address = $5,
		    postal_code = $6, city = $7, notes = $8, updated_at = NOW()
		WHERE id = $9 AND user_id = $10
	`, req.Name, req.ContactName, req.Email, req.Phone, req.Address, req.PostalCode,
		req.City, req.Notes, id, userID)

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update client"})
		return
	}

	if rows, _ := result.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Client updated"})
}

func (h *ClientHandler) DeleteClient(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, ok := idParam(c)
	if !ok {
		return
	}

	result, err := h.DB.Exec(`
		DELETE FROM clients WHERE id = $1 AND user_id = $2
	`, id, userID)

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete client"})
		return
	}

	if rows, _ := result.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Client deleted"})
}
