package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/skyfetch/internal/domain"
)

// PacketRepo — репозиторий пакетов наблюдения.
// Реализует task.PacketWriter.
type PacketRepo struct {
	pool *pgxpool.Pool
}

// NewPacketRepo создаёт PacketRepo.
func NewPacketRepo(pool *pgxpool.Pool) *PacketRepo {
	return &PacketRepo{pool: pool}
}

// InsertPacket вставляет один пакет в область area.
func (r *PacketRepo) InsertPacket(ctx context.Context, area string, pkt domain.Packet) error {
	query := `
		INSERT INTO packets (area, source, format, payload, ts)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query, area, pkt.Source, string(pkt.Format), pkt.Payload, pkt.TS)
	if err != nil {
		return fmt.Errorf("insert packet: %w", err)
	}
	return nil
}

// CountByArea возвращает число пакетов в области.
func (r *PacketRepo) CountByArea(ctx context.Context, area string) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM packets WHERE area = $1`, area).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count packets: %w", err)
	}
	return n, nil
}
