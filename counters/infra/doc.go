// Package infra contém implementações concretas (infraestrutura) para os
// contratos definidos no pacote domain.
//
// Exemplos:
//   - BusuanziClient: fonte externa de contadores via HTTP, com pacing
//     usando golang.org/x/time/rate
//   - RedisCounterStore / MemoryCounterStore: persistência dos contadores
//   - DomainStore: registros de domínio em SQLite
//   - RedisSessionStore / MemorySessionStore: sessões com TTL
//   - SyncThrottle: token bucket por domínio para o endpoint de sync
package infra
