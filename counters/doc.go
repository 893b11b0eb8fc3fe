// Package counters fornece o adapter HTTP (net/http) do serviço de
// contadores: rotas, extração de sessão e tradução de desfechos/erros para
// status e JSON.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (sync, registro, verificação, visita) sem net/http
//   - infra: implementações concretas (redis, sqlite, cliente Busuanzi)
//   - counters (este pacote): handlers HTTP + wiring de sessão + respostas
//
// Fluxo do pedido de sync:
//
//  1. Resolve a sessão (Bearer ou cookie) para o id do usuário
//  2. Decodifica o corpo e chama a camada application
//  3. Pré-condição falhou → 401/400/404; fora isso, 200 com synced=true/false
//  4. Sync incompleto NÃO é erro HTTP: volta 200 com synced=false e a
//     mensagem da fonte externa (ou um fallback genérico)
package counters
