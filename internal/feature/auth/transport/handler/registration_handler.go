package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"kurukshetra_backend/internal/feature/auth/domain/entity"
	"kurukshetra_backend/internal/feature/auth/transport/http/dto"
	"kurukshetra_backend/internal/feature/auth/usecase"
)

// RegistrationUsecase is the three-step registration flow.
type RegistrationUsecase interface {
	StartStep1(ctx context.Context, email, username, password string) (string, error)
	AdvanceStep2(ctx context.Context, sessionID, firstName, lastName string, agreeToTerms bool) error
	CommitStep3(ctx context.Context, in usecase.CommitInput) (*usecase.CommitResult, error)
}

// RegistrationHandler は3ステップ登録のHTTPリクエストを処理します。
type RegistrationHandler struct {
	reg RegistrationUsecase
}

// NewRegistrationHandler はRegistrationHandlerを生成します。
func NewRegistrationHandler(reg RegistrationUsecase) *RegistrationHandler {
	return &RegistrationHandler{reg: reg}
}

// Step1 creates a registration session.
func (h *RegistrationHandler) Step1(c *gin.Context) {
	var req dto.Step1Req
	if !bindJSON(c, &req) {
		return
	}
	id, err := h.reg.StartStep1(c.Request.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		writeError(c, "registration.step1", err)
		return
	}
	c.JSON(http.StatusOK, dto.StepResp{SessionID: id, NextStep: entity.StepProfile})
}

// Step2 records the profile and the terms agreement.
func (h *RegistrationHandler) Step2(c *gin.Context) {
	var req dto.Step2Req
	if !bindJSON(c, &req) {
		return
	}
	if err := h.reg.AdvanceStep2(c.Request.Context(), req.SessionID, req.FirstName, req.LastName, req.AgreeToTerms); err != nil {
		writeError(c, "registration.step2", err)
		return
	}
	c.JSON(http.StatusOK, dto.StepResp{SessionID: req.SessionID, NextStep: entity.StepCommitted})
}

// Step3 はユーザーを作成します。sessionIdがない場合はリクエストの認証情報から直接作成します。
func (h *RegistrationHandler) Step3(c *gin.Context) {
	var req dto.Step3Req
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.reg.CommitStep3(c.Request.Context(), usecase.CommitInput{
		SessionID: req.SessionID,
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
	})
	if err != nil {
		writeError(c, "registration.step3", err)
		return
	}
	slog.Info("registration committed", "user_id", res.User.ID, "bypass", res.Bypass, "direct", res.Direct, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, dto.CommitResp{User: dto.FromUser(res.User)})
}
