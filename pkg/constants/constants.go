package constants

import "time"

const (
	CHANNEL_SIZE       = 100              // 通道大小
	SEND_BUFFER_SIZE   = 256              // 单个连接待发送消息缓冲
	READ_LIMIT         = 64 * 1024        // 单条 websocket 消息最大字节数
	WRITE_WAIT         = 10 * time.Second // 单次写超时
	PONG_WAIT          = 60 * time.Second // 心跳超时
	PING_PERIOD        = PONG_WAIT * 9 / 10
	RELAY_RETRY_PERIOD = time.Second // 转发消费异常后的重试间隔
)

// 取消订阅记录的保留时间，超过后仍未消费的旧消息按无人订阅丢弃
const RELAY_TOMBSTONE_TTL = 10 * time.Minute
