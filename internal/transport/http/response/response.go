// Package response writes the two error shapes clients expect: auth routes
// reply with {"error"} and chat routes with {"success": false, "error"}.
package response

import "github.com/gin-gonic/gin"

const (
	MsgServerError   = "Server Error"
	MsgUnauthorized  = "Unauthorized"
	MsgBadRequest    = "Invalid request body"
	MsgChatFailed    = "Something went wrong."
	MsgChatServerErr = "Server error"
	MsgTooMany       = "too many requests"
)

type ErrorBody struct {
	Error string `json:"error"`
}

type ChatErrorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func Error(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorBody{Error: message})
}

func AbortError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorBody{Error: message})
}

// ChatOK merges success=true into payload.
func ChatOK(c *gin.Context, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(200, body)
}

func ChatError(c *gin.Context, status int, message string) {
	c.JSON(status, ChatErrorBody{Success: false, Error: message})
}
