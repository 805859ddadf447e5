package observability

import (
	"github.com/segmentio/kafka-go"
)

// KafkaHeaderCarrier адаптирует заголовки kafka.Message к propagation.TextMapCarrier,
// чтобы trace context переезжал через брокер вместе с сообщением.
type KafkaHeaderCarrier struct {
	Headers *[]kafka.Header
}

// Get возвращает значение заголовка по ключу, пустую строку если его нет
func (c KafkaHeaderCarrier) Get(key string) string {
	for _, h := range *c.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// Set устанавливает значение заголовка, заменяя существующий с тем же ключом
func (c KafkaHeaderCarrier) Set(key, value string) {
	for i, h := range *c.Headers {
		if h.Key == key {
			(*c.Headers)[i].Value = []byte(value)
			return
		}
	}
	*c.Headers = append(*c.Headers, kafka.Header{Key: key, Value: []byte(value)})
}

// Keys возвращает все ключи заголовков
func (c KafkaHeaderCarrier) Keys() []string {
	out := make([]string, 0, len(*c.Headers))
	for _, h := range *c.Headers {
		out = append(out, h.Key)
	}
	return out
}
