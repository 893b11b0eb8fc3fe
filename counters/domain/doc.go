// Package domain define contratos e tipos de domínio para contadores de
// visitas e sincronização com o Busuanzi.
//
// Este pacote não depende de net/http nem de implementações concretas
// (redis, sqlite, cliente remoto). A intenção é permitir testes de unidade
// puros e desacoplar regras de negócio de detalhes de infraestrutura.
package domain
