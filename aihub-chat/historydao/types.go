package historydao

// Turn is one message in a chat session.
type Turn struct {
	Role      string `dynamodbav:"role"`
	Content   string `dynamodbav:"content"`
	CreatedAt int64  `dynamodbav:"created_at"`
}

// History holds the accumulated turns of a chat session.
type History struct {
	SessionID string `dynamodbav:"session_id" ddb:"hash"`
	Turns     []Turn `dynamodbav:"turns"`
	UpdatedAt int64  `dynamodbav:"updated_at"`
}
