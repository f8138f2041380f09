package impl

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.uber.org/fx"

	deliverycontext "stampcard/internal/delivery/context"
	"stampcard/internal/domain/entity"
	domainerrors "stampcard/internal/domain/errors"
	"stampcard/internal/domain/repository"
	"stampcard/internal/domain/service"
	"stampcard/internal/errors"
	"stampcard/internal/qr"
	"stampcard/internal/usecase"
)

// qrService implements the QRUsecase interface.
type qrService struct {
	txManager   repository.TransactionManager
	qrRepo      repository.QRCodeRepository
	userRepo    repository.UserRepository
	imageRender service.QRImageService
	logger      *slog.Logger
}

// QRServiceParams holds dependencies for QRService, injected by Fx.
type QRServiceParams struct {
	fx.In

	TxManager   repository.TransactionManager
	QRRepo      repository.QRCodeRepository
	UserRepo    repository.UserRepository
	ImageRender service.QRImageService
	Logger      *slog.Logger
}

// NewQRService creates a new QR service instance.
func NewQRService(params QRServiceParams) usecase.QRUsecase {
	return &qrService{
		txManager:   params.TxManager,
		qrRepo:      params.QRRepo,
		userRepo:    params.UserRepo,
		imageRender: params.ImageRender,
		logger:      params.Logger,
	}
}

func (srv *qrService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Generate issues a fresh payload and overwrites the owner's registration in
// place, so the retired code stops resolving the moment the transaction
// commits. The payload is mirrored onto the user row as a fallback read path.
func (srv *qrService) Generate(ctx context.Context, userID uuid.UUID) (*entity.QRInfo, error) {
	payload, err := qr.NewPayload(userID.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to build payload")
	}

	serialized, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize payload")
	}

	now := time.Now()
	record := &entity.QRCode{
		ID:          uuid.New(),
		Code:        payload.Code,
		OwnerUserID: userID,
		Payload:     string(serialized),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = srv.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		if err := factory.QRCodeRepo().UpsertByOwner(ctx, record); err != nil {
			return errors.Wrap(err, "failed to upsert qr registration")
		}

		if err := factory.UserRepo().UpdateQRMirror(ctx, userID, record.Payload); err != nil {
			return errors.Wrap(err, "failed to mirror qr payload")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("QR regenerated",
		slog.String("owner_id", userID.String()),
		slog.String("code", record.Code))

	return &entity.QRInfo{
		OwnerUserID: userID,
		Code:        record.Code,
		Payload:     record.Payload,
		UpdatedAt:   record.UpdatedAt,
	}, nil
}

// GetOwn returns the user's active QR. When the registry row is missing it
// falls back to the payload mirrored on the user row; with neither present
// the user has no QR and the read reports NotFound rather than minting one.
func (srv *qrService) GetOwn(ctx context.Context, userID uuid.UUID) (*entity.QRInfo, error) {
	record, err := srv.qrRepo.FindByOwner(ctx, userID)
	if err == nil {
		return &entity.QRInfo{
			OwnerUserID: record.OwnerUserID,
			Code:        record.Code,
			Payload:     record.Payload,
			UpdatedAt:   record.UpdatedAt,
		}, nil
	}
	if !errors.Is(err, repository.ErrQRCodeNotFound) {
		return nil, errors.Wrap(err, "failed to find qr by owner")
	}

	if info, ok := srv.fromMirror(ctx, userID); ok {
		return info, nil
	}

	return nil, domainerrors.ErrQRNotFound
}

// fromMirror recovers QR info from the payload copy stored on the user row.
func (srv *qrService) fromMirror(ctx context.Context, userID uuid.UUID) (*entity.QRInfo, bool) {
	user, err := srv.userRepo.FindUserByID(ctx, userID)
	if err != nil || user.QRCodeMirror == "" {
		return nil, false
	}

	var payload entity.QRPayload
	if err := json.Unmarshal([]byte(user.QRCodeMirror), &payload); err != nil || payload.Code == "" {
		return nil, false
	}

	return &entity.QRInfo{
		OwnerUserID: userID,
		Code:        payload.Code,
		Payload:     user.QRCodeMirror,
		UpdatedAt:   user.UpdatedAt,
	}, true
}

// RenderOwnPNG renders the user's active payload as a PNG image.
func (srv *qrService) RenderOwnPNG(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	info, err := srv.GetOwn(ctx, userID)
	if err != nil {
		return nil, err
	}

	image, err := srv.imageRender.RenderPNG(info.Payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to render qr png")
	}

	return image, nil
}

// ResolveCode looks up the owner of a manually entered short code.
func (srv *qrService) ResolveCode(ctx context.Context, code string) (*entity.PublicIdentity, error) {
	record, err := srv.qrRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrQRCodeNotFound) {
			return nil, domainerrors.ErrQRNotFound
		}

		return nil, errors.Wrap(err, "failed to find qr by code")
	}

	owner, err := srv.userRepo.FindUserByID(ctx, record.OwnerUserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find qr owner")
	}

	identity := owner.Public()

	return &identity, nil
}
