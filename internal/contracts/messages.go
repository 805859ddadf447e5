// Package contracts описывает wire-формат сообщений между product и order
// сервисами. Оба процесса импортируют этот пакет, чтобы формат не разъезжался.
package contracts

// Названия топиков, связывающих product и order сервисы
const (
	// TopicOrders — заявки на выполнение заказа (product -> order)
	TopicOrders = "orders"
	// TopicProducts — ответы о выполненных заказах (order -> product)
	TopicProducts = "products"

	// TopicOrdersDLQ — заявки, которые order-сервис не смог обработать
	TopicOrdersDLQ = "orders.dlq"
	// TopicProductsDLQ — ответы, которые product-сервис не смог обработать
	TopicProductsDLQ = "products.dlq"
)

// ProductRef — снапшот товара на момент заказа.
// Цена фиксируется в сообщении: последующие изменения каталога
// на уже отправленный заказ не влияют.
type ProductRef struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// OrderRequest — заявка на выполнение заказа (топик orders).
// OrderID служит correlation ID: по нему ответ сопоставляется с ожидающим запросом.
type OrderRequest struct {
	Products []ProductRef `json:"products"`
	Username string       `json:"username"`
	OrderID  string       `json:"orderId"`
}

// FulfillmentReply — ответ о выполненном заказе (топик products)
type FulfillmentReply struct {
	OrderID    string       `json:"orderId"`
	User       string       `json:"user"`
	Products   []ProductRef `json:"products"`
	TotalPrice float64      `json:"totalPrice"`
}
