package broker

import "errors"

// ErrNotReady возвращается из Publish, пока соединение с брокером не установлено.
// Publish не буферизует сообщения: вызывающий код должен сам решить, что делать.
var ErrNotReady = errors.New("broker is not ready")

// ErrMalformedMessage — sentinel для poison message: сообщение нельзя обработать
// в принципе (битый JSON, отсутствуют обязательные поля). Handler оборачивает
// свою ошибку этим sentinel-ом, consumer отправляет сообщение в DLQ без retry.
var ErrMalformedMessage = errors.New("malformed message")
