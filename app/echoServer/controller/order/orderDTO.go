package order

type CreateOrderReq struct {
	BillID         string `json:"billId" validate:"required"`
	CustomerMobile string `json:"customerMobile" validate:"required,upimobile"`
	RedirectURL    string `json:"redirectUrl" validate:"omitempty,url"`
}
