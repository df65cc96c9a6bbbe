// Package jobfile реализует описание заданий в HCL файлах.
//
// Файл содержит блоки job; каждый блок либо задаёт текст pipeline
// напрямую, либо собирается из сахарных атрибутов (fetch/read/stream,
// convert, into/store). В выражениях доступны переменные окружения
// через env: into = "${env.HOME}/adsb/out.json".
//
// Jobfile — это способ подать задание (через CLI), а не отдельный
// исполнитель: результат компиляции — обычный текст pipeline.
package jobfile
