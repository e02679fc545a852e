package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/clipmarket/clipmarket/internal/adapter/repository"
	domainRepo "github.com/clipmarket/clipmarket/internal/domain/repository"
	"github.com/clipmarket/clipmarket/internal/infrastructure/crypto"
)

// Repositories holds all repository instances
type Repositories struct {
	User       domainRepo.UserRepository
	Video      domainRepo.VideoRepository
	Purchase   domainRepo.PurchaseRepository
	Payment    domainRepo.PaymentRepository
	Settlement domainRepo.SettlementRepository
	Payout     domainRepo.PayoutRepository
	Channel    domainRepo.ChannelRepository
	Webhook    repository.WebhookRepository
}

// NewRepositories creates new repository instances with database connection
func NewRepositories(db *gorm.DB, tokenCipher crypto.TokenCipher, logger *zap.Logger) *Repositories {
	return &Repositories{
		User:       repository.NewUserRepository(db, logger),
		Video:      repository.NewVideoRepository(db, logger),
		Purchase:   repository.NewPurchaseRepository(db, logger),
		Payment:    repository.NewPaymentRepository(db, logger),
		Settlement: repository.NewSettlementRepository(db, logger),
		Payout:     repository.NewPayoutRepository(db, logger),
		Channel:    repository.NewChannelRepository(db, tokenCipher, logger),
		Webhook:    repository.NewWebhookRepository(db, logger),
	}
}
