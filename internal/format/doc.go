// Package format реализует преобразование пакетов между форматами.
//
// Данные наблюдения (state vectors ADS-B и дронов) циркулируют в трёх
// форматах: raw (байты источника, по соглашению CSV), csv и json.
// Converter переводит полезную нагрузку пакета между ними; преобразование
// в тот же формат — тождественное, без парсинга.
package format
