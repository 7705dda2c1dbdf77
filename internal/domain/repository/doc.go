// Package repository define los tipos y contratos de dominio del dashboard.
//
// La única implementación de UserRepository vive en internal/store/fs y
// persiste el mapping username -> record en un archivo JSON.
//
// Convenciones:
//   - Context siempre es el primer parámetro
//   - Errores de dominio están en errors.go y se comparan con errors.Is
package repository
