package models

// TransactionType represents the type of balance change
type TransactionType string

const (
	TransactionTypeInitial     TransactionType = "initial"
	TransactionTypeBetWin      TransactionType = "bet_win"
	TransactionTypeBetLoss     TransactionType = "bet_loss"
	TransactionTypeTransferIn  TransactionType = "transfer_in"
	TransactionTypeTransferOut TransactionType = "transfer_out"
)

// String returns the string representation of the transaction type
func (tt TransactionType) String() string {
	return string(tt)
}
