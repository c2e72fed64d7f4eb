// Package docs SafeRoute Service API.
//
// Сервис безопасных пешеходных маршрутов. Граф улиц берется из OpenStreetMap,
// ребра перевзвешиваются по слоям безопасности (преступления, камеры, освещение,
// заведения, полиция) отдельно для дня и ночи, маршрут ищется алгоритмом Дейкстры.
//
// Основные возможности:
// - Поиск самого безопасного маршрута между двумя точками
// - Карта маршрута в HTML (Leaflet)
// - Состояние графа и прогретых вариантов
//
//	Schemes: http, https
//	BasePath: /
//	Version: 1.0.0
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//	- text/html
//
// swagger:meta
package docs
