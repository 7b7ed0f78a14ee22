package dto

type CreateRoomRequest struct {
	Name    string `json:"name"     validate:"required"`
	ForSale bool   `json:"for_sale"`
}

type UpdateRoomRequest struct {
	Name    *string `json:"name"`
	ForSale *bool   `json:"for_sale"`
}

type RoomResponse struct {
	ID      string `json:"id"`
	StoreID string `json:"store_id"`
	Name    string `json:"name"`
	ForSale bool   `json:"for_sale"`
	Active  bool   `json:"active"`
}
