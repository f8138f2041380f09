package impl

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.uber.org/fx"

	"stampcard/config"
	deliverycontext "stampcard/internal/delivery/context"
	"stampcard/internal/domain/entity"
	domainerrors "stampcard/internal/domain/errors"
	"stampcard/internal/domain/repository"
	"stampcard/internal/domain/service"
	"stampcard/internal/errors"
	"stampcard/internal/qr"
	"stampcard/internal/usecase"
)

// scanService implements the ScanUsecase interface. It resolves scanned QR
// text and routes it to the subscription or stamp ledger primitives.
type scanService struct {
	txManager        repository.TransactionManager
	qrRepo           repository.QRCodeRepository
	userRepo         repository.UserRepository
	publisher        service.EventPublisher
	maxGrantQuantity int
	maxPayloadSkew   time.Duration
	logger           *slog.Logger
}

// ScanServiceParams holds dependencies for ScanService, injected by Fx.
type ScanServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	QRRepo    repository.QRCodeRepository
	UserRepo  repository.UserRepository
	Publisher service.EventPublisher
	Config    *config.Config
	Logger    *slog.Logger
}

// NewScanService creates a new scan service instance.
func NewScanService(params ScanServiceParams) usecase.ScanUsecase {
	return &scanService{
		txManager:        params.TxManager,
		qrRepo:           params.QRRepo,
		userRepo:         params.UserRepo,
		publisher:        params.Publisher,
		maxGrantQuantity: params.Config.MaxGrantQuantity(),
		maxPayloadSkew:   params.Config.MaxPayloadSkew(),
		logger:           params.Logger,
	}
}

func (srv *scanService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// ProcessAction decodes the scanned text and dispatches on the role pair:
// a client scanning a business subscribes (with the daily bonus stamp), a
// business scanning a client grants stamps with auto-subscribe. The text is
// first tried as a structured payload and falls back to a manual short code.
func (srv *scanService) ProcessAction(ctx context.Context, input usecase.ProcessScanInput) (*entity.ScanResult, error) {
	record, targetID, err := srv.resolveScan(ctx, input.RawText)
	if err != nil {
		return nil, err
	}

	if targetID == input.ScannerID {
		return nil, domainerrors.ErrSelfScan
	}

	scanner, err := srv.loadUser(ctx, input.ScannerID)
	if err != nil {
		return nil, err
	}

	target, err := srv.loadUser(ctx, targetID)
	if err != nil {
		return nil, err
	}

	switch {
	case scanner.Role == entity.RoleClient && target.Role == entity.RoleBusiness:
		return srv.subscribeWithBonus(ctx, scanner, target, record)
	case scanner.Role == entity.RoleBusiness && target.Role == entity.RoleClient:
		return srv.grantWithAutoSubscribe(ctx, scanner, target, input.Quantity, record)
	default:
		return nil, domainerrors.ErrInvalidRoleCombination
	}
}

// resolveScan decodes the scanned text into the matching QR registration.
// Structured payloads must name the registration's owner; anything that is
// not a payload is treated as a manually entered short code.
func (srv *scanService) resolveScan(ctx context.Context, rawText string) (*entity.QRCode, uuid.UUID, error) {
	payload, err := qr.ParsePayload(rawText)
	if err == nil {
		return srv.resolveByPayload(ctx, payload)
	}

	record, err := srv.findByCode(ctx, rawText)
	if err != nil {
		return nil, uuid.Nil, err
	}

	return record, record.OwnerUserID, nil
}

func (srv *scanService) resolveByPayload(ctx context.Context, payload *entity.QRPayload) (*entity.QRCode, uuid.UUID, error) {
	ownerID, err := uuid.Parse(payload.UserID)
	if err != nil {
		return nil, uuid.Nil, domainerrors.ErrInvalidPayload
	}

	record, err := srv.findByCode(ctx, payload.Code)
	if err != nil {
		return nil, uuid.Nil, err
	}

	if record.OwnerUserID != ownerID {
		return nil, uuid.Nil, domainerrors.ErrInvalidPayload
	}

	return record, ownerID, nil
}

func (srv *scanService) findByCode(ctx context.Context, code string) (*entity.QRCode, error) {
	record, err := srv.qrRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrQRCodeNotFound) {
			return nil, domainerrors.ErrQRNotFound
		}

		return nil, errors.Wrap(err, "failed to find qr by code")
	}

	return record, nil
}

func (srv *scanService) loadUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := srv.userRepo.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	return user, nil
}

// subscribeWithBonus handles a client scanning a business: the subscription
// is ensured idempotently and the daily bonus stamp applied. A capped bonus
// reports Success=false without undoing the subscription.
func (srv *scanService) subscribeWithBonus(ctx context.Context, client, business *entity.User, record *entity.QRCode) (*entity.ScanResult, error) {
	result := &entity.ScanResult{
		Action:     entity.ScanActionSubscribe,
		ClientID:   client.ID,
		BusinessID: business.ID,
		TargetUser: business.Public(),
		QR:         qrInfoOf(record),
	}

	err := srv.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		subscriptionID, alreadySubscribed, err := ensureSubscription(ctx, factory, client.ID, business.ID)
		if err != nil {
			return err
		}

		result.SubscriptionID = subscriptionID
		result.AlreadySubscribed = alreadySubscribed

		granted, total, err := grantDailyBonusToLedger(ctx, factory, client.ID, business.ID, time.Now())
		if err != nil {
			return err
		}

		result.Success = granted
		result.TotalStamps = total
		if granted {
			result.StampsGranted = 1
		}
		result.StampsBefore = total - result.StampsGranted

		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.AlreadySubscribed {
		srv.publish(ctx, service.EventSubscriptionCreated, client.ID, business.ID, 0, uuid.Nil)
	}
	if result.Success {
		srv.publish(ctx, service.EventStampsGranted, client.ID, business.ID, 1, uuid.Nil)
	}

	return result, nil
}

// grantWithAutoSubscribe handles a business scanning a client: stamps are
// granted and the subscription created on the fly when missing.
func (srv *scanService) grantWithAutoSubscribe(ctx context.Context, business, client *entity.User, quantity int, record *entity.QRCode) (*entity.ScanResult, error) {
	if quantity < 1 || quantity > srv.maxGrantQuantity {
		return nil, domainerrors.ErrInvalidQuantity
	}

	result := &entity.ScanResult{
		Success:       true,
		Action:        entity.ScanActionGrantStamps,
		StampsGranted: quantity,
		ClientID:      client.ID,
		BusinessID:    business.ID,
		TargetUser:    client.Public(),
		QR:            qrInfoOf(record),
	}

	err := srv.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		subscriptionID, alreadySubscribed, err := ensureSubscription(ctx, factory, client.ID, business.ID)
		if err != nil {
			return err
		}

		result.SubscriptionID = subscriptionID
		result.AlreadySubscribed = alreadySubscribed

		before, total, err := grantToLedger(ctx, factory, client.ID, business.ID, quantity, time.Now())
		if err != nil {
			return err
		}

		result.StampsBefore = before
		result.TotalStamps = total

		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.AlreadySubscribed {
		srv.publish(ctx, service.EventSubscriptionCreated, client.ID, business.ID, 0, uuid.Nil)
	}
	srv.publish(ctx, service.EventStampsGranted, client.ID, business.ID, quantity, uuid.Nil)

	srv.log(ctx).Info("Scan processed",
		slog.String("action", string(result.Action)),
		slog.String("client_id", client.ID.String()),
		slog.String("business_id", business.ID.String()),
		slog.Int("quantity", quantity))

	return result, nil
}

// SubscribeFromPayload subscribes using a scanned structured payload. The
// payload timestamp must be within the configured skew of the server clock.
func (srv *scanService) SubscribeFromPayload(ctx context.Context, scannerID uuid.UUID, rawText string) (*entity.SubscribeResult, error) {
	payload, err := qr.ParsePayload(rawText)
	if err != nil {
		return nil, domainerrors.ErrInvalidPayload
	}

	ownerID, err := uuid.Parse(payload.UserID)
	if err != nil {
		return nil, domainerrors.ErrInvalidPayload
	}

	return srv.subscribeCore(ctx, scannerID, ownerID, payload.Code, payload.Ts)
}

// SubscribeByCode subscribes using a manually entered short code by
// replaying the code's canonical stored payload, including its freshness
// check.
func (srv *scanService) SubscribeByCode(ctx context.Context, scannerID uuid.UUID, code string) (*entity.SubscribeResult, error) {
	record, err := srv.findByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	var payload entity.QRPayload
	if err := json.Unmarshal([]byte(record.Payload), &payload); err != nil {
		return nil, domainerrors.ErrInvalidPayload
	}
	if payload.Code != record.Code || payload.UserID != record.OwnerUserID.String() {
		return nil, domainerrors.ErrInvalidPayload
	}

	return srv.subscribeCore(ctx, scannerID, record.OwnerUserID, payload.Code, payload.Ts)
}

// subscribeCore validates the scan pair and links them as client-business,
// whichever side each is on.
func (srv *scanService) subscribeCore(ctx context.Context, scannerID, ownerID uuid.UUID, code string, ts int64) (*entity.SubscribeResult, error) {
	scanner, err := srv.loadUser(ctx, scannerID)
	if err != nil {
		return nil, err
	}

	owner, err := srv.loadUser(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if !scanner.Role.IsValid() || !owner.Role.IsValid() {
		return nil, domainerrors.ErrInvalidRoleCombination
	}
	if scanner.ID == owner.ID {
		return nil, domainerrors.ErrSelfScan
	}

	now := time.Now().UnixMilli()
	if skew := now - ts; skew > srv.maxPayloadSkew.Milliseconds() || -skew > srv.maxPayloadSkew.Milliseconds() {
		return nil, domainerrors.ErrPayloadExpired
	}

	// The code must match the owner's active registration; a retired code
	// no longer subscribes.
	record, err := srv.qrRepo.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrQRCodeNotFound) {
			return nil, domainerrors.ErrQRNotFound
		}

		return nil, errors.Wrap(err, "failed to find qr by owner")
	}
	if record.Code != code {
		return nil, domainerrors.ErrInvalidPayload.WithDetails("the code does not match the owner's active QR")
	}

	var clientID, businessID uuid.UUID
	switch {
	case owner.Role == entity.RoleBusiness && scanner.Role == entity.RoleClient:
		clientID, businessID = scanner.ID, owner.ID
	case owner.Role == entity.RoleClient && scanner.Role == entity.RoleBusiness:
		clientID, businessID = owner.ID, scanner.ID
	default:
		return nil, domainerrors.ErrInvalidRoleCombination
	}

	result := &entity.SubscribeResult{
		Success:    true,
		ClientID:   clientID,
		BusinessID: businessID,
		QR:         qrInfoOf(record),
	}

	err = srv.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		subscriptionID, alreadySubscribed, err := ensureSubscription(ctx, factory, clientID, businessID)
		if err != nil {
			return err
		}

		result.SubscriptionID = subscriptionID
		result.AlreadySubscribed = alreadySubscribed

		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.AlreadySubscribed {
		srv.publish(ctx, service.EventSubscriptionCreated, clientID, businessID, 0, uuid.Nil)
	}

	return result, nil
}

// GrantFromPayload grants stamps using a scanned structured payload.
func (srv *scanService) GrantFromPayload(ctx context.Context, businessID uuid.UUID, rawText string, quantity int) (*entity.GrantResult, error) {
	payload, err := qr.ParsePayload(rawText)
	if err != nil {
		return nil, domainerrors.ErrInvalidPayload
	}

	record, _, err := srv.resolveByPayload(ctx, payload)
	if err != nil {
		return nil, err
	}

	return srv.grantCore(ctx, businessID, record, quantity)
}

// GrantByCode grants stamps using a manually entered short code.
func (srv *scanService) GrantByCode(ctx context.Context, businessID uuid.UUID, code string, quantity int) (*entity.GrantResult, error) {
	record, err := srv.findByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	return srv.grantCore(ctx, businessID, record, quantity)
}

// grantCore validates the grant pair and accumulates onto the ledger.
func (srv *scanService) grantCore(ctx context.Context, businessID uuid.UUID, record *entity.QRCode, quantity int) (*entity.GrantResult, error) {
	business, err := srv.loadUser(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if business.Role != entity.RoleBusiness {
		return nil, domainerrors.ErrForbidden.WithDetails("only businesses can grant stamps")
	}

	client, err := srv.loadUser(ctx, record.OwnerUserID)
	if err != nil {
		return nil, err
	}
	if client.Role != entity.RoleClient {
		return nil, domainerrors.ErrInvalidRoleCombination
	}

	if quantity < 1 || quantity > srv.maxGrantQuantity {
		return nil, domainerrors.ErrInvalidQuantity
	}

	result := &entity.GrantResult{
		Success:       true,
		StampsGranted: quantity,
		ClientID:      client.ID,
		BusinessID:    businessID,
		QR:            qrInfoOf(record),
	}

	var newSubscription bool
	err = srv.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		_, alreadySubscribed, err := ensureSubscription(ctx, factory, client.ID, businessID)
		if err != nil {
			return err
		}
		newSubscription = !alreadySubscribed

		_, total, err := grantToLedger(ctx, factory, client.ID, businessID, quantity, time.Now())
		if err != nil {
			return err
		}

		result.TotalStamps = total

		return nil
	})
	if err != nil {
		return nil, err
	}

	if newSubscription {
		srv.publish(ctx, service.EventSubscriptionCreated, client.ID, businessID, 0, uuid.Nil)
	}
	srv.publish(ctx, service.EventStampsGranted, client.ID, businessID, quantity, uuid.Nil)

	return result, nil
}

func (srv *scanService) publish(ctx context.Context, eventType string, clientID, businessID uuid.UUID, quantity int, rewardID uuid.UUID) {
	event := &service.LoyaltyEvent{
		RequestID:  deliverycontext.GetRequestIDFromContext(ctx),
		Type:       eventType,
		ClientID:   clientID.String(),
		BusinessID: businessID.String(),
		Quantity:   quantity,
		OccurredAt: time.Now().UnixMilli(),
	}
	if rewardID != uuid.Nil {
		event.RewardID = rewardID.String()
	}

	if err := srv.publisher.PublishLoyaltyEvent(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish loyalty event", slog.Any("error", err))
	}
}

func qrInfoOf(record *entity.QRCode) entity.QRInfo {
	return entity.QRInfo{
		OwnerUserID: record.OwnerUserID,
		Code:        record.Code,
		Payload:     record.Payload,
		UpdatedAt:   record.UpdatedAt,
	}
}
