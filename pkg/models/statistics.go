package models

// DashboardStats summarizes the master list and the learning set
type DashboardStats struct {
	TotalMaster   int `json:"total_master" db:"total_master"`
	TotalLearning int `json:"total_learning" db:"total_learning"`
	DueToday      int `json:"due_today" db:"due_today"`
	Mastered      int `json:"mastered" db:"mastered"`
}
