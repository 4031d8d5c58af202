package server

// PromptReq 自然语言指令
type PromptReq struct {
	Prompt string `json:"prompt" binding:"required"` // 用户输入
}

// TransactionsReq 查询交易记录
type TransactionsReq struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=1000"` // 返回条数
}
