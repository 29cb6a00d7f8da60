package service

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/allisson/byoc-relay/internal/errors"
	wechatDomain "github.com/allisson/byoc-relay/internal/wechat/domain"
)

// messageDocument mirrors the leaves of a WeChat webhook <xml> document.
// Unknown leaves are ignored.
type messageDocument struct {
	XMLName      xml.Name `xml:"xml"`
	ToUserName   string   `xml:"ToUserName"`
	FromUserName string   `xml:"FromUserName"`
	CreateTime   string   `xml:"CreateTime"`
	MsgType      string   `xml:"MsgType"`
	Content      string   `xml:"Content"`
	MsgID        string   `xml:"MsgId"`
	Encrypt      string   `xml:"Encrypt"`
}

// xmlMessageCodec implements MessageCodec with encoding/xml.
type xmlMessageCodec struct{}

// DecodeMessage parses a plaintext text message.
//
// Leaves are trimmed, so indentation and CDATA wrapping are both accepted.
// The routing leaves and MsgType are checked first, so a non-text message is
// reported as ErrUnsupportedMessageKind even though it has no Content.
func (x *xmlMessageCodec) DecodeMessage(raw []byte) (*wechatDomain.InboundMessage, error) {
	doc, err := parseDocument(raw)
	if err != nil {
		return nil, err
	}

	required := []struct {
		name  string
		value string
	}{
		{"ToUserName", doc.ToUserName},
		{"FromUserName", doc.FromUserName},
		{"CreateTime", doc.CreateTime},
		{"MsgType", doc.MsgType},
	}
	for _, leaf := range required {
		if leaf.value == "" {
			return nil, apperrors.Wrap(wechatDomain.ErrMalformedPayload, "missing "+leaf.name)
		}
	}

	if doc.MsgType != wechatDomain.MsgTypeText {
		return nil, apperrors.Wrap(wechatDomain.ErrUnsupportedMessageKind, doc.MsgType)
	}

	if doc.Content == "" {
		return nil, apperrors.Wrap(wechatDomain.ErrMalformedPayload, "missing Content")
	}
	if doc.MsgID == "" {
		return nil, apperrors.Wrap(wechatDomain.ErrMalformedPayload, "missing MsgId")
	}

	createdAt, err := strconv.ParseInt(doc.CreateTime, 10, 64)
	if err != nil {
		return nil, apperrors.Wrap(wechatDomain.ErrMalformedPayload, "CreateTime is not unix seconds")
	}

	return &wechatDomain.InboundMessage{
		SenderID:    doc.FromUserName,
		RecipientID: doc.ToUserName,
		CreatedAt:   time.Unix(createdAt, 0).UTC(),
		MsgType:     doc.MsgType,
		Content:     doc.Content,
		MsgID:       doc.MsgID,
	}, nil
}

// DecodeEncryptedEnvelope returns the Encrypt leaf of a safe-mode document.
func (x *xmlMessageCodec) DecodeEncryptedEnvelope(raw []byte) (string, error) {
	doc, err := parseDocument(raw)
	if err != nil {
		return "", err
	}
	if doc.Encrypt == "" {
		return "", apperrors.Wrap(wechatDomain.ErrMalformedPayload, "missing Encrypt")
	}
	return doc.Encrypt, nil
}

func parseDocument(raw []byte) (*messageDocument, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, apperrors.Wrap(wechatDomain.ErrMalformedPayload, "empty body")
	}

	var doc messageDocument
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, apperrors.Wrap(wechatDomain.ErrMalformedPayload, err.Error())
	}

	doc.ToUserName = strings.TrimSpace(doc.ToUserName)
	doc.FromUserName = strings.TrimSpace(doc.FromUserName)
	doc.CreateTime = strings.TrimSpace(doc.CreateTime)
	doc.MsgType = strings.TrimSpace(doc.MsgType)
	doc.MsgID = strings.TrimSpace(doc.MsgID)
	doc.Encrypt = strings.TrimSpace(doc.Encrypt)
	// Content keeps inner whitespace; only blank content is rejected.
	if strings.TrimSpace(doc.Content) == "" {
		doc.Content = ""
	}

	return &doc, nil
}

// EncodeEncryptedEnvelope builds the safe-mode document WeChat posts when
// encryption is enabled. It is the inverse of DecodeEncryptedEnvelope.
func EncodeEncryptedEnvelope(toUserName, encrypted string) ([]byte, error) {
	doc := struct {
		XMLName    xml.Name `xml:"xml"`
		ToUserName cdata    `xml:"ToUserName"`
		Encrypt    cdata    `xml:"Encrypt"`
	}{
		ToUserName: cdata{toUserName},
		Encrypt:    cdata{encrypted},
	}
	return xml.Marshal(doc)
}

// EncodeTextMessage builds a plaintext text message document as WeChat sends it.
func EncodeTextMessage(msg *wechatDomain.InboundMessage) ([]byte, error) {
	doc := struct {
		XMLName      xml.Name `xml:"xml"`
		ToUserName   cdata    `xml:"ToUserName"`
		FromUserName cdata    `xml:"FromUserName"`
		CreateTime   int64    `xml:"CreateTime"`
		MsgType      cdata    `xml:"MsgType"`
		Content      cdata    `xml:"Content"`
		MsgID        string   `xml:"MsgId"`
	}{
		ToUserName:   cdata{msg.RecipientID},
		FromUserName: cdata{msg.SenderID},
		CreateTime:   msg.CreatedAt.Unix(),
		MsgType:      cdata{msg.MsgType},
		Content:      cdata{msg.Content},
		MsgID:        msg.MsgID,
	}
	return xml.Marshal(doc)
}

type cdata struct {
	Value string `xml:",cdata"`
}

// NewMessageCodec creates a new MessageCodec.
func NewMessageCodec() MessageCodec {
	return &xmlMessageCodec{}
}
