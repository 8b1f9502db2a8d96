package model

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// JSONStrings 字符串列表编码为jsonb列值
func JSONStrings(values []string) datatypes.JSON {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(data)
}

// StringsFromJSON jsonb列值解码为字符串列表，坏数据返回空列表
func StringsFromJSON(j datatypes.JSON) []string {
	if len(j) == 0 {
		return []string{}
	}
	var values []string
	if err := json.Unmarshal(j, &values); err != nil {
		return []string{}
	}
	return values
}

// MatchesFromJSON 推荐快照payload解码为候选列表，坏数据返回空列表
func MatchesFromJSON(j datatypes.JSON) []Match {
	if len(j) == 0 {
		return []Match{}
	}
	var matches []Match
	if err := json.Unmarshal(j, &matches); err != nil {
		return []Match{}
	}
	return matches
}
