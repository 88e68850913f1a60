package models

// Collection names inside the bank database.
const (
	UsersCollection         = "users"
	NotificationsCollection = "notifications"
	// TransactionsCollection is reserved; nothing reads or writes it yet.
	TransactionsCollection = "transactions"
)
