package impl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"stampcard/config"
	"stampcard/internal/domain/entity"
	"stampcard/internal/domain/repository"
	"stampcard/internal/domain/service"
	"stampcard/internal/infra/persistence/model"
	"stampcard/internal/infra/persistence/postgres"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	cfg := &config.Config{
		Auth:    &config.AuthConfig{BcryptCost: 4},
		Loyalty: &config.LoyaltyConfig{MaxGrantQuantity: 10},
		QRCode: &config.QRCodeConfig{
			Size:                 256,
			ErrorCorrectionLevel: "M",
			PayloadMaxSkew:       5 * time.Minute,
		},
	}
	cfg.SecretKey.Access = "test-access-secret"
	cfg.SecretKey.Refresh = "test-refresh-secret"

	return cfg
}

// capturingPublisher records published events for assertions.
type capturingPublisher struct {
	mu     sync.Mutex
	events []*service.LoyaltyEvent
}

func (p *capturingPublisher) PublishLoyaltyEvent(_ context.Context, event *service.LoyaltyEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)

	return nil
}

func (p *capturingPublisher) Close() error { return nil }

func (p *capturingPublisher) eventsOfType(eventType string) []*service.LoyaltyEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	var matched []*service.LoyaltyEvent
	for _, event := range p.events {
		if event.Type == eventType {
			matched = append(matched, event)
		}
	}

	return matched
}

// testEnv wires real repositories over an in-memory database so service
// tests exercise the same SQL paths as production.
type testEnv struct {
	db             *gorm.DB
	txManager      repository.TransactionManager
	userRepo       repository.UserRepository
	qrRepo         repository.QRCodeRepository
	subRepo        repository.SubscriptionRepository
	stampRepo      repository.StampRepository
	rewardRepo     repository.RewardRepository
	redemptionRepo repository.RedemptionRepository
	publisher      *capturingPublisher
	cfg            *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps every session on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.UserModel{},
		&model.QRCodeModel{},
		&model.SubscriptionModel{},
		&model.StampModel{},
		&model.RewardModel{},
		&model.RedemptionModel{},
	))

	return &testEnv{
		db:             db,
		txManager:      postgres.NewTransactionManager(db),
		userRepo:       postgres.NewUserRepository(db),
		qrRepo:         postgres.NewQRCodeRepository(db),
		subRepo:        postgres.NewSubscriptionRepository(db),
		stampRepo:      postgres.NewStampRepository(db),
		rewardRepo:     postgres.NewRewardRepository(db),
		redemptionRepo: postgres.NewRedemptionRepository(db),
		publisher:      &capturingPublisher{},
		cfg:            newTestConfig(),
	}
}

var userSeq int

func (env *testEnv) createUser(t *testing.T, role entity.Role) *entity.User {
	t.Helper()

	userSeq++
	now := time.Now()
	user := &entity.User{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("user%d@example.com", userSeq),
		Name:         fmt.Sprintf("User %d", userSeq),
		PasswordHash: "not-a-real-hash",
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, env.userRepo.CreateUser(context.Background(), user))

	return user
}

func (env *testEnv) newScanService() *scanService {
	return &scanService{
		txManager:        env.txManager,
		qrRepo:           env.qrRepo,
		userRepo:         env.userRepo,
		publisher:        env.publisher,
		maxGrantQuantity: env.cfg.MaxGrantQuantity(),
		maxPayloadSkew:   env.cfg.MaxPayloadSkew(),
		logger:           newDiscardLogger(),
	}
}

func (env *testEnv) newSubscriptionService() *subscriptionService {
	return &subscriptionService{
		txManager:        env.txManager,
		subscriptionRepo: env.subRepo,
		userRepo:         env.userRepo,
		publisher:        env.publisher,
		logger:           newDiscardLogger(),
	}
}

func (env *testEnv) newStampService() *stampService {
	return &stampService{
		txManager:        env.txManager,
		stampRepo:        env.stampRepo,
		userRepo:         env.userRepo,
		publisher:        env.publisher,
		maxGrantQuantity: env.cfg.MaxGrantQuantity(),
		logger:           newDiscardLogger(),
	}
}

func (env *testEnv) newRewardService() *rewardService {
	return &rewardService{
		txManager:        env.txManager,
		rewardRepo:       env.rewardRepo,
		redemptionRepo:   env.redemptionRepo,
		subscriptionRepo: env.subRepo,
		stampRepo:        env.stampRepo,
		userRepo:         env.userRepo,
		publisher:        env.publisher,
		logger:           newDiscardLogger(),
	}
}

func (env *testEnv) newQRService() *qrService {
	return &qrService{
		txManager:   env.txManager,
		qrRepo:      env.qrRepo,
		userRepo:    env.userRepo,
		imageRender: stubImageRender{},
		logger:      newDiscardLogger(),
	}
}

type stubImageRender struct{}

func (stubImageRender) RenderPNG(payload string) ([]byte, error) {
	return []byte("png:" + payload), nil
}
