// Package application concentra os casos de uso do serviço de contadores
// (pedido de sync, registro e verificação de domínio) sem saber nada sobre
// HTTP. Cada serviço é uma struct pequena e sem estado sobre stores
// injetados, o que permite substituição por dublês em teste.
package application
