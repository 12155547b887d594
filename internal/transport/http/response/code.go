package response

import "net/http"

// 对外固定文案
const (
	MsgUnknown       = "Unknown error occured"
	MsgRouteNotFound = "Could not find this route"
	MsgAuthFailed    = "Authentication failed"
	MsgTimeout       = "Request timed out, please try again"
	MsgBusy          = "Server is busy, please try again later"
	MsgBodyTooLarge  = "Request body too large"
)

// StatusMsgMap 没有业务文案时按状态码兜底
var StatusMsgMap = map[int]string{
	http.StatusBadRequest:            "Bad Request",
	http.StatusUnauthorized:          MsgAuthFailed,
	http.StatusForbidden:             "Forbidden",
	http.StatusNotFound:              MsgRouteNotFound,
	http.StatusRequestEntityTooLarge: MsgBodyTooLarge,
	http.StatusUnprocessableEntity:   "Invalid data entered, please check your input",
	http.StatusInternalServerError:   MsgUnknown,
	http.StatusServiceUnavailable:    MsgBusy,
	http.StatusGatewayTimeout:        MsgTimeout,
}

// MsgFor 状态码 -> 默认文案
func MsgFor(status int) string {
	if m, ok := StatusMsgMap[status]; ok {
		return m
	}
	return MsgUnknown
}
