package request_models

type NearbyFacilitiesQuery struct {
	Radius int    `form:"radius" binding:"omitempty,min=1"`
	Max    int    `form:"max" binding:"omitempty,min=1,max=20"`
	IP     string `form:"ip" binding:"omitempty,ip"`
	Format string `form:"format" binding:"omitempty,oneof=text json"`
}

type ListLookupsQuery struct {
	Page     int `form:"page"`
	PageSize int `form:"pageSize"`
}
