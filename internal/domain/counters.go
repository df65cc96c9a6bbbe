package domain

import (
	"fmt"
	"time"
)

// Counters — счётчики одного задания: трафик через pipeline и ошибки.
//
// Счётчики монотонные и неотрицательные. Мутирует их только Runner,
// владеющий заданием, через актор Stats.
type Counters struct {
	// Packets — число пакетов, прошедших через pipeline.
	Packets uint64 `json:"packets"`

	// Bytes — байты, вошедшие в pipeline из producer'а.
	Bytes uint64 `json:"bytes"`

	// BytesOut — байты, записанные consumer'ом.
	BytesOut uint64 `json:"bytes_out"`

	// Errors — число ошибок задач.
	Errors uint64 `json:"errors"`

	// Duration — полное время выполнения задания.
	Duration time.Duration `json:"duration"`
}

// Add прибавляет счётчики o. Duration берётся из o, если задана.
func (c *Counters) Add(o Counters) {
	c.Packets += o.Packets
	c.Bytes += o.Bytes
	c.BytesOut += o.BytesOut
	c.Errors += o.Errors
	if o.Duration > 0 {
		c.Duration = o.Duration
	}
}

// String возвращает однострочную сводку счётчиков.
func (c Counters) String() string {
	return fmt.Sprintf("pkts=%d bytes=%d bytes_out=%d errors=%d duration=%s",
		c.Packets, c.Bytes, c.BytesOut, c.Errors, c.Duration)
}
