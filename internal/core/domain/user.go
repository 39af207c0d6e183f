package domain

// User is a ledger account holder. Password holds a bcrypt hash; records
// imported from older data files may still carry a plaintext value until the
// owner's next successful login.
type User struct {
	Username string `json:"username" bson:"username"`
	Password string `json:"password" bson:"password"`
	Balance  int64  `json:"balance"  bson:"balance"`
}
