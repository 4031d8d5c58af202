package types

// Transaction 控制台发出的上链交易记录
type Transaction struct {
	Hash      string `json:"hash"`            // 交易hash
	Action    Action `json:"action"`          // 触发的操作
	From      string `json:"from"`            // 签名者
	To        string `json:"to,omitempty"`    // 接收者 合约部署时为空
	Value     string `json:"value,omitempty"` // 原生币数量 以 ether 计
	Contract  string `json:"contract,omitempty"`
	TimeStamp int64  `json:"timeStamp"` // 毫秒时间戳

	BlockNumber uint64 `json:"blockNumber,omitempty"`
	Status      uint   `json:"status"`  // 交易状态（0：未成功，1：已成功）
	Pending     bool   `json:"pending"` // 尚未拿到回执
}
