// Package storage реализует файловые области хранения результатов.
//
// Область (area) — поддиректория под базовой директорией демона:
// например adsb/, drones/, archive/. Задачи-потребители пишут в области,
// не зная абсолютных путей; раскладку знает только Fs.
package storage
