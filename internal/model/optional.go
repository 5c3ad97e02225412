package model

import "encoding/json"

// OptionalString 区分 JSON 字段缺失、显式 null 和具体字符串三种情况。
// 机器注册请求中 licenseKey 的三种形态语义不同,不能用 *string 表达。
type OptionalString struct {
	Set   bool
	Valid bool
	Value string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Valid = false
		o.Value = ""
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

func (o OptionalString) MarshalJSON() ([]byte, error) {
	if !o.Set || !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}
