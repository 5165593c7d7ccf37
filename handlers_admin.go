package main

import (
	"net/http"
	"strconv"

	"udhaar/models"

	"github.com/gin-gonic/gin"
)

func (s *server) adminListLoansHandler(c *gin.Context) {
	loans, err := s.store.ListLoans()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, loans)
}

func (s *server) adminDecideLoanHandler(c *gin.Context) {
	loanID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid loan id"})
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Status != models.LoanApproved && req.Status != models.LoanRejected {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be approved or rejected"})
		return
	}
	loan, err := s.store.SetLoanStatus(uint(loanID), req.Status)
	if err != nil {
		c.JSON(httpStatusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, loan)
}

func (s *server) adminListDocumentsHandler(c *gin.Context) {
	docs, err := s.store.AllDocuments()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (s *server) adminDecideDocumentHandler(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("userID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	docID, err := strconv.ParseUint(c.Param("docID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	switch req.Status {
	case models.DocApproved, models.DocRejected, models.DocNeedMoreInfo:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be approved, rejected or need_more_info"})
		return
	}
	doc, err := s.store.SetDocumentStatus(uint(userID), uint(docID), req.Status)
	if err != nil {
		c.JSON(httpStatusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, doc)
}
