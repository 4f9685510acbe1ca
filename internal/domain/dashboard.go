package domain

// DashboardStats summarizes the back-office record counts
type DashboardStats struct {
	TotalProducts      int `json:"totalProducts"`
	LowStockProducts   int `json:"lowStockProducts"`
	OutOfStockProducts int `json:"outOfStockProducts"`
	TotalSales         int `json:"totalSales"`
	TotalOrders        int `json:"totalOrders"`
	TotalSuppliers     int `json:"totalSuppliers"`
	TotalCategories    int `json:"totalCategories"`
}
