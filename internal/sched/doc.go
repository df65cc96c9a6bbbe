// Package sched реализует актор-планировщик заданий.
//
// Scheduler владеет тремя очередями (waiting, running, finished) и
// таблицей заданий. Все мутации происходят только внутри одного цикла
// сообщений: внешние вызовы (Submit, Cancel, Status...) отправляют
// команды в канал и ждут ответа. Это сохраняет single-writer инвариант:
// переходы состояний заданий фактически однопоточны при любом числе
// параллельно выполняющихся заданий.
//
// Тик с фиксированным интервалом продвигает waiting → running строго
// FIFO по времени постановки, пока занято меньше MaxWorkers слотов.
// Каждое задание уходит в свежий Runner (не пул): сбой одного Runner'а
// изолирован и не задевает ни очереди, ни другие задания.
package sched
