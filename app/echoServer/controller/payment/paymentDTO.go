package payment

type CheckStatusReq struct {
	OrderID string `json:"orderId" validate:"required"`
}
