package repository

import "context"

// TransactionManager defines the interface for managing database transactions.
// This allows the use case layer to handle transactions without depending on a specific DB driver like GORM.
type TransactionManager interface {
	// Execute runs a function within a database transaction.
	// If the function returns an error, the transaction is rolled back. Otherwise, it's committed.
	// All repository operations within the function will use the same database transaction.
	Execute(ctx context.Context, fn func(txRepoFactory RepositoryFactory) error) error
}

// RepositoryFactory provides repository instances bound to one transaction,
// so every read and write of a multi-step mutation shares the same
// connection and isolation scope.
type RepositoryFactory interface {
	// UserRepo returns a UserRepository bound to the current transaction.
	UserRepo() UserRepository

	// QRCodeRepo returns a QRCodeRepository bound to the current transaction.
	QRCodeRepo() QRCodeRepository

	// SubscriptionRepo returns a SubscriptionRepository bound to the current transaction.
	SubscriptionRepo() SubscriptionRepository

	// StampRepo returns a StampRepository bound to the current transaction.
	StampRepo() StampRepository

	// RewardRepo returns a RewardRepository bound to the current transaction.
	RewardRepo() RewardRepository

	// RedemptionRepo returns a RedemptionRepository bound to the current transaction.
	RedemptionRepo() RedemptionRepository
}
