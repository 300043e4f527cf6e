package models

import "time"

// Pair - пара значений "как в объявлении" / "как извлечено".
type Pair struct {
	Original  Text `json:"original"`
	Extracted Text `json:"extracted"`
}

// ComparisonInput - одна запись сравнения в теле запроса на загрузку.
// Отсутствующие поля становятся NULL, неизвестные поля игнорируются.
type ComparisonInput struct {
	DealerName         Text   `json:"dealer_name"`
	CarMark            Text   `json:"car_mark"`
	CarModel           Text   `json:"car_model"`
	CarModelVariant    Text   `json:"car_model_variant"`
	CarModelSubVariant Text   `json:"car_model_sub_variant"`
	EngineName         Text   `json:"engine_name"`
	KW                 Number `json:"kw"`
	HP                 Number `json:"hp"`
	Transmission       Text   `json:"transmission"`
	Drive              Text   `json:"drive"`
	FuelType           Text   `json:"fuel_type"`
	Year               Number `json:"year"`
	VehicleType        Text   `json:"vehicle_type"`
	Seats              Number `json:"seats"`
	EmissionStandard   Text   `json:"emission_standard"`
	CO2LevelCombined   Number `json:"co2_level_combined"`
	DeliveryCostEUR    Number `json:"delivery_cost_eur"`
	ConditionType      Text   `json:"condition_type"`
	ConditionID        Text   `json:"condition_id"`
	ConditionCreatedAt Text   `json:"condition_created_at"`
	ConditionUpdatedAt Text   `json:"condition_updated_at"`

	Value    *Pair `json:"value"`
	ValueEUR *Pair `json:"value_eur"`
	Remark   *Pair `json:"remark"`
}

// ComparisonRecord - строка таблицы comparisons.
type ComparisonRecord struct {
	ID      int64  `db:"id" json:"id"`
	BatchID string `db:"batch_id" json:"batch_id"`

	DealerName         Text   `db:"dealer_name" json:"dealer_name"`
	CarMark            Text   `db:"car_mark" json:"car_mark"`
	CarModel           Text   `db:"car_model" json:"car_model"`
	CarModelVariant    Text   `db:"car_model_variant" json:"car_model_variant"`
	CarModelSubVariant Text   `db:"car_model_sub_variant" json:"car_model_sub_variant"`
	EngineName         Text   `db:"engine_name" json:"engine_name"`
	KW                 Number `db:"kw" json:"kw"`
	HP                 Number `db:"hp" json:"hp"`
	Transmission       Text   `db:"transmission" json:"transmission"`
	Drive              Text   `db:"drive" json:"drive"`
	FuelType           Text   `db:"fuel_type" json:"fuel_type"`
	Year               Number `db:"year" json:"year"`
	VehicleType        Text   `db:"vehicle_type" json:"vehicle_type"`
	Seats              Number `db:"seats" json:"seats"`
	EmissionStandard   Text   `db:"emission_standard" json:"emission_standard"`
	CO2LevelCombined   Number `db:"co2_level_combined" json:"co2_level_combined"`
	DeliveryCostEUR    Number `db:"delivery_cost_eur" json:"delivery_cost_eur"`
	ConditionType      Text   `db:"condition_type" json:"condition_type"`
	ConditionID        Text   `db:"condition_id" json:"condition_id"`
	ConditionCreatedAt Text   `db:"condition_created_at" json:"condition_created_at"`
	ConditionUpdatedAt Text   `db:"condition_updated_at" json:"condition_updated_at"`

	ValueOriginal     Text `db:"value_original" json:"value_original"`
	ValueExtracted    Text `db:"value_extracted" json:"value_extracted"`
	ValueEUROriginal  Text `db:"value_eur_original" json:"value_eur_original"`
	ValueEURExtracted Text `db:"value_eur_extracted" json:"value_eur_extracted"`
	RemarkOriginal    Text `db:"remark_original" json:"remark_original"`
	RemarkExtracted   Text `db:"remark_extracted" json:"remark_extracted"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ComparisonColumns - колонки comparisons, заполняемые при вставке, в порядке схемы.
//
//nolint:gochecknoglobals // Неизменяемый список колонок.
var ComparisonColumns = []string{
	"batch_id",
	"dealer_name", "car_mark", "car_model", "car_model_variant",
	"car_model_sub_variant", "engine_name", "kw", "hp", "transmission",
	"drive", "fuel_type", "year", "vehicle_type", "seats", "emission_standard",
	"co2_level_combined", "delivery_cost_eur", "condition_type",
	"condition_id", "condition_created_at", "condition_updated_at",
	"value_original", "value_extracted", "value_eur_original",
	"value_eur_extracted", "remark_original", "remark_extracted",
}

// pairOrEmpty разворачивает nil в пустую пару (оба значения NULL).
func pairOrEmpty(p *Pair) Pair {
	if p == nil {
		return Pair{}
	}
	return *p
}

// Record раскладывает входную запись в строку таблицы с указанным batch_id.
// Каждая пара превращается в две колонки: *_original и *_extracted.
func (in ComparisonInput) Record(batchID string) ComparisonRecord {
	value := pairOrEmpty(in.Value)
	valueEUR := pairOrEmpty(in.ValueEUR)
	remark := pairOrEmpty(in.Remark)

	return ComparisonRecord{
		BatchID:            batchID,
		DealerName:         in.DealerName,
		CarMark:            in.CarMark,
		CarModel:           in.CarModel,
		CarModelVariant:    in.CarModelVariant,
		CarModelSubVariant: in.CarModelSubVariant,
		EngineName:         in.EngineName,
		KW:                 in.KW,
		HP:                 in.HP,
		Transmission:       in.Transmission,
		Drive:              in.Drive,
		FuelType:           in.FuelType,
		Year:               in.Year,
		VehicleType:        in.VehicleType,
		Seats:              in.Seats,
		EmissionStandard:   in.EmissionStandard,
		CO2LevelCombined:   in.CO2LevelCombined,
		DeliveryCostEUR:    in.DeliveryCostEUR,
		ConditionType:      in.ConditionType,
		ConditionID:        in.ConditionID,
		ConditionCreatedAt: in.ConditionCreatedAt,
		ConditionUpdatedAt: in.ConditionUpdatedAt,
		ValueOriginal:      value.Original,
		ValueExtracted:     value.Extracted,
		ValueEUROriginal:   valueEUR.Original,
		ValueEURExtracted:  valueEUR.Extracted,
		RemarkOriginal:     remark.Original,
		RemarkExtracted:    remark.Extracted,
	}
}

// Cells возвращает значения колонок в порядке ComparisonColumns.
// NULL передается как nil, числа - как float64, текст - как string.
func (r ComparisonRecord) Cells() []any {
	text := func(t Text) any {
		if p := t.Ptr(); p != nil {
			return *p
		}
		return nil
	}
	number := func(n Number) any {
		if f := n.Float(); f != nil {
			return *f
		}
		return nil
	}

	return []any{
		r.BatchID,
		text(r.DealerName), text(r.CarMark), text(r.CarModel), text(r.CarModelVariant),
		text(r.CarModelSubVariant), text(r.EngineName), number(r.KW), number(r.HP), text(r.Transmission),
		text(r.Drive), text(r.FuelType), number(r.Year), text(r.VehicleType), number(r.Seats),
		text(r.EmissionStandard),
		number(r.CO2LevelCombined), number(r.DeliveryCostEUR), text(r.ConditionType),
		text(r.ConditionID), text(r.ConditionCreatedAt), text(r.ConditionUpdatedAt),
		text(r.ValueOriginal), text(r.ValueExtracted), text(r.ValueEUROriginal),
		text(r.ValueEURExtracted), text(r.RemarkOriginal), text(r.RemarkExtracted),
	}
}

// UploadDataResponse - ответ на загрузку пакета сравнений.
type UploadDataResponse struct {
	Message      string `json:"message"`
	ItemsCount   int    `json:"items_count"`
	BatchID      string `json:"batch_id"`
	DashboardURL string `json:"dashboard_url"`
}

// GetDataResponse - ответ со всеми записями пакета.
type GetDataResponse struct {
	BatchID string             `json:"batch_id"`
	Data    []ComparisonRecord `json:"data"`
}
