package models

// Record is one monthly work/salary entry for a user. Timestamp is the
// creation instant in Unix milliseconds, matching the historical data files.
type Record struct {
	ID         int64   `json:"id"`
	UserID     int64   `json:"userId"`
	Month      int     `json:"month"`
	Year       int     `json:"year"`
	DaysWorked int     `json:"daysWorked"`
	Salary     float64 `json:"salary"`
	Expenses   float64 `json:"expenses"`
	Notes      string  `json:"notes"`
	Timestamp  int64   `json:"timestamp"`
}
