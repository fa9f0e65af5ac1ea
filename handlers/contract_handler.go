package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"contract-analyzer-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContractHandler handles HTTP requests for contracts
type ContractHandler struct {
	contractService *service.ContractService
	maxFileSize     int64
}

// NewContractHandler creates a new contract handler
func NewContractHandler(contractService *service.ContractService) *ContractHandler {
	return &ContractHandler{
		contractService: contractService,
		maxFileSize:     5 * 1024 * 1024, // 5MB
	}
}

// UploadContractRequest represents a JSON contract upload
type UploadContractRequest struct {
	Filename string `json:"filename"`
	Text     string `json:"text" binding:"required"`
}

// UploadContract handles POST /api/contracts
//
// Accepts either a multipart form with a plain-text "file" field, or a JSON
// body with the contract text inline. Indexing happens in the background;
// poll GET /api/contracts/:id for status.
func (h *ContractHandler) UploadContract(c *gin.Context) {
	filename, text, ok := h.readUpload(c)
	if !ok {
		return
	}

	contract, err := h.contractService.UploadContract(c.Request.Context(), filename, text)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"data": gin.H{
			"contract_id": contract.ID,
			"status":      contract.Status,
			"message":     "Contract queued for indexing. Poll /api/contracts/:id for status.",
		},
	})
}

// readUpload extracts (filename, text) from either a multipart file or a
// JSON body. Replies with an error response itself when ok is false.
func (h *ContractHandler) readUpload(c *gin.Context) (string, string, bool) {
	fileHeader, err := c.FormFile("file")
	if err == nil {
		if fileHeader.Size > h.maxFileSize {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FILE_TOO_LARGE",
					"message": fmt.Sprintf("File exceeds maximum size of %d bytes", h.maxFileSize),
				},
			})
			return "", "", false
		}

		f, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_FILE",
					"message": err.Error(),
				},
			})
			return "", "", false
		}
		defer f.Close()

		data, err := io.ReadAll(io.LimitReader(f, h.maxFileSize+1))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_FILE",
					"message": err.Error(),
				},
			})
			return "", "", false
		}
		return fileHeader.Filename, string(data), true
	}

	var req UploadContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Provide a multipart 'file' field or a JSON body with 'text'",
			},
		})
		return "", "", false
	}
	if req.Filename == "" {
		req.Filename = "contract.txt"
	}
	return req.Filename, req.Text, true
}

// GetContract handles GET /api/contracts/:id
func (h *ContractHandler) GetContract(c *gin.Context) {
	id, ok := h.contractID(c)
	if !ok {
		return
	}

	contract, err := h.contractService.GetContract(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Contract not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    contract,
	})
}

// QueryContractRequest represents the request body for querying a contract
type QueryContractRequest struct {
	Query string `json:"query"`
	Mode  string `json:"mode"`
	K     int    `json:"k"`
}

// QueryContract handles POST /api/contracts/:id/query
func (h *ContractHandler) QueryContract(c *gin.Context) {
	id, ok := h.contractID(c)
	if !ok {
		return
	}

	var req QueryContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}
	if req.Query == "" && req.Mode == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Either 'query' or 'mode' is required",
			},
		})
		return
	}

	result, err := h.contractService.Query(c.Request.Context(), id, req.Query, req.Mode, req.K)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrContractNotReady):
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_READY",
					"message": "Contract is still being indexed",
				},
			})
		case errors.Is(err, service.ErrContractFailed):
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INDEXING_FAILED",
					"message": "Contract indexing failed; re-upload the contract",
				},
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "QUERY_FAILED",
					"message": err.Error(),
				},
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// GetHistory handles GET /api/contracts/:id/history
func (h *ContractHandler) GetHistory(c *gin.Context) {
	id, ok := h.contractID(c)
	if !ok {
		return
	}

	limit := 10
	if limitStr := c.Query("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil {
			limit = n
		}
	}

	runs, err := h.contractService.History(c.Request.Context(), id, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "RETRIEVAL_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    runs,
	})
}

// GetLastResult handles GET /api/contracts/:id/result
func (h *ContractHandler) GetLastResult(c *gin.Context) {
	id, ok := h.contractID(c)
	if !ok {
		return
	}

	result, err := h.contractService.GetLastResult(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "RETRIEVAL_FAILED",
				"message": err.Error(),
			},
		})
		return
	}
	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NO_RESULT",
				"message": "No analysis has been run for this contract yet",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// ExportLastResult handles GET /api/contracts/:id/export
//
// Serves the most recent result as a downloadable JSON attachment.
func (h *ContractHandler) ExportLastResult(c *gin.Context) {
	id, ok := h.contractID(c)
	if !ok {
		return
	}

	result, err := h.contractService.GetLastResult(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "RETRIEVAL_FAILED",
				"message": err.Error(),
			},
		})
		return
	}
	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NO_RESULT",
				"message": "No analysis has been run for this contract yet",
			},
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="analysis_%s.json"`, id))
	c.JSON(http.StatusOK, result)
}

// GetClause handles GET /api/contracts/:id/clauses/:clause_id
func (h *ContractHandler) GetClause(c *gin.Context) {
	id, ok := h.contractID(c)
	if !ok {
		return
	}

	clauseID, err := strconv.Atoi(c.Param("clause_id"))
	if err != nil || clauseID < 1 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_CLAUSE_ID",
				"message": "Clause ID must be a positive integer",
			},
		})
		return
	}

	clause, err := h.contractService.GetClause(c.Request.Context(), id, clauseID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Clause not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    clause,
	})
}

func (h *ContractHandler) contractID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid contract ID format",
			},
		})
		return uuid.Nil, false
	}
	return id, true
}
