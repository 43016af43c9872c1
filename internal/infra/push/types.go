package push

type ticketResponse struct {
	Data   []ticket        `json:"data"`
	Errors []responseError `json:"errors,omitempty"`
}

type ticket struct {
	Status  string        `json:"status"`
	ID      string        `json:"id,omitempty"`
	Message string        `json:"message,omitempty"`
	Details ticketDetails `json:"details,omitempty"`
}

type ticketDetails struct {
	Error string `json:"error,omitempty"`
}

type responseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const ticketStatusOK = "ok"
